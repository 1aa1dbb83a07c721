package pagseguro

import (
	"strings"

	"vendas-platform/services/paymentevent"
)

// Parser turns PagSeguro webhook bodies into notifications.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (*Parser) Provider() paymentevent.Provider {
	return paymentevent.ProviderPagSeguro
}

// Parse validates the body. The event id is the notificationCode, falling
// back to the reference; the reference is the top-level reference field.
func (*Parser) Parse(raw []byte) (*paymentevent.Notification, error) {
	var body Notification
	if err := paymentevent.DecodeObject(raw, &body); err != nil {
		return nil, err
	}

	reference := trimmed(body.Reference)
	eventID := trimmed(body.NotificationCode)
	if eventID == "" {
		eventID = reference
	}

	return &paymentevent.Notification{
		Provider:  paymentevent.ProviderPagSeguro,
		EventID:   eventID,
		Type:      trimmed(body.NotificationType),
		Reference: reference,
		Status:    NormalizeStatus(body.Status),
	}, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
