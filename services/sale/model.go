package sale

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the platform's canonical sale state. Provider codes without a
// canonical meaning are stored as-is.
type Status int

const (
	StatusAwaitingPayment Status = 0
	StatusPaid            Status = 3
	StatusCancelled       Status = 7
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingPayment:
		return "awaiting_payment"
	case StatusPaid:
		return "paid"
	case StatusCancelled:
		return "cancelled"
	default:
		return "provider_status"
	}
}

// PaymentMethod codes persisted on the sale.
type PaymentMethod int

const (
	PaymentMethodCard   PaymentMethod = 1
	PaymentMethodBoleto PaymentMethod = 2
	PaymentMethodPix    PaymentMethod = 3
)

type Sale struct {
	ID               string              `gorm:"column:id;primaryKey"`
	TenantID         string              `gorm:"column:tenant_id;index"`
	ProducerID       string              `gorm:"column:producer_id"`
	AffiliateID      *string             `gorm:"column:affiliate_id;index"`
	ProductID        string              `gorm:"column:product_id"`
	ProductCode      string              `gorm:"column:product_code"`
	ProductName      string              `gorm:"column:product_name"`
	ProductPrice     decimal.Decimal     `gorm:"column:product_price;type:numeric(12,2)"`
	PlanID           string              `gorm:"column:plan_id"`
	PlanCode         string              `gorm:"column:plan_code"`
	PlanName         string              `gorm:"column:plan_name"`
	PlanPrice        decimal.Decimal     `gorm:"column:plan_price;type:numeric(12,2)"`
	PlanItems        int                 `gorm:"column:plan_items"`
	OrderBumps       datatypes.JSON      `gorm:"column:order_bumps"`
	TransactionCode  string              `gorm:"column:transaction_code;uniqueIndex"`
	PaymentMethod    PaymentMethod       `gorm:"column:payment_method"`
	Status           Status              `gorm:"column:status"`
	ValorProduto     decimal.Decimal     `gorm:"column:valor_produto;type:numeric(12,2)"`
	ValorBruto       decimal.Decimal     `gorm:"column:valor_bruto;type:numeric(12,2)"`
	ValorDesconto    decimal.Decimal     `gorm:"column:valor_desconto;type:numeric(12,2)"`
	ValorFrete       decimal.Decimal     `gorm:"column:valor_frete;type:numeric(12,2)"`
	ValorLiquido     decimal.Decimal     `gorm:"column:valor_liquido;type:numeric(12,2)"`
	ComissaoAfiliado decimal.NullDecimal `gorm:"column:comissao_afiliado;type:numeric(12,2)"`
	BuyerName        string              `gorm:"column:buyer_name"`
	BuyerEmail       string              `gorm:"column:buyer_email"`
	BuyerCpfCnpj     string              `gorm:"column:buyer_cpf_cnpj"`
	FinalizedAt      *time.Time          `gorm:"column:finalized_at"`
	CreatedAt        time.Time           `gorm:"column:created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at"`
}

func (Sale) TableName() string {
	return "billing_sales"
}

// HasAffiliateCommission reports whether the sale carries an affiliate and a
// positive precomputed commission.
func (s *Sale) HasAffiliateCommission() bool {
	return s.AffiliateID != nil && *s.AffiliateID != "" &&
		s.ComissaoAfiliado.Valid && s.ComissaoAfiliado.Decimal.IsPositive()
}
