package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Provider string

const (
	ProviderPagSeguro Provider = "pagseguro"
	ProviderPagarme   Provider = "pagarme"
)

// PaymentGateway is a tenant's configured payment provider account.
type PaymentGateway struct {
	ID        string    `gorm:"column:id;primaryKey"`
	TenantID  string    `gorm:"column:tenant_id;index"`
	Provider  string    `gorm:"column:provider"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (PaymentGateway) TableName() string {
	return "payment_gateways"
}

type Buyer struct {
	Name     string
	Email    string
	Document string
}

// LinkRequest describes the hosted payment page to create for a sale.
type LinkRequest struct {
	SaleID          string
	TransactionCode string
	ProductName     string
	Amount          decimal.Decimal
	Buyer           Buyer
}

// Linker creates a hosted payment page and returns its URL.
type Linker interface {
	Provider() Provider
	CreatePaymentLink(ctx context.Context, req LinkRequest) (string, error)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
