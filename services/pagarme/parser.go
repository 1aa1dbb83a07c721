package pagarme

import (
	"strings"

	"vendas-platform/services/paymentevent"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (*Parser) Provider() paymentevent.Provider {
	return paymentevent.ProviderPagarme
}

// Parse validates the body. The event id is the top-level id, else data.id.
// The reference is metadata.transaction_code, else metadata.sale_id.
func (*Parser) Parse(raw []byte) (*paymentevent.Notification, error) {
	var body Notification
	if err := paymentevent.DecodeObject(raw, &body); err != nil {
		return nil, err
	}

	eventID := trimmed(body.ID)
	if eventID == "" && body.Data != nil {
		eventID = trimmed(body.Data.ID)
	}

	var status, reference string
	if body.Data != nil {
		status = trimmed(body.Data.Status)
		reference = body.Data.metadataString("transaction_code")
		if reference == "" {
			reference = body.Data.metadataString("sale_id")
		}
	}

	return &paymentevent.Notification{
		Provider:  paymentevent.ProviderPagarme,
		EventID:   eventID,
		Type:      trimmed(body.Type),
		Reference: reference,
		Status:    NormalizeStatus(status),
	}, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
