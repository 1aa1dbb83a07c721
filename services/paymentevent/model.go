package paymentevent

import (
	"time"

	"gorm.io/datatypes"
)

type Provider string

const (
	ProviderPagSeguro Provider = "pagseguro"
	ProviderPagarme   Provider = "pagarme"
)

type Status string

const (
	StatusReceived  Status = "received"
	StatusProcessed Status = "processed"
	StatusError     Status = "error"
)

// PaymentEvent is the idempotency ledger row for one provider event.
type PaymentEvent struct {
	ID           string         `gorm:"column:id;primaryKey" json:"id"`
	Provider     Provider       `gorm:"column:provider;type:varchar(20);not null;index:ux_payment_events_provider_event,unique,priority:1" json:"provider"`
	EventID      string         `gorm:"column:event_id;type:varchar(191);not null;index:ux_payment_events_provider_event,unique,priority:2" json:"event_id"`
	PayloadHash  string         `gorm:"column:payload_hash;type:varchar(64)" json:"payload_hash"`
	Status       Status         `gorm:"column:status;type:varchar(20);not null;default:received;index" json:"status"`
	ErrorMessage *string        `gorm:"column:error_message" json:"error_message,omitempty"`
	RawPayload   datatypes.JSON `gorm:"column:raw_payload" json:"raw_payload"`
	CreatedAt    time.Time      `gorm:"column:created_at;index" json:"created_at"`
	ProcessedAt  *time.Time     `gorm:"column:processed_at" json:"processed_at,omitempty"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}

func (e *PaymentEvent) IsProcessed() bool {
	return e.Status == StatusProcessed
}
