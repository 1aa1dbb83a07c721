package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	productStatusActive   = "active"
	affiliateStatusActive = "active"
)

type Product struct {
	ID          string    `gorm:"column:id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id;index"`
	Code        string    `gorm:"column:code"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	PublicSlug  string    `gorm:"column:public_slug;index"`
	IsPublic    bool      `gorm:"column:is_public"`
	Status      string    `gorm:"column:status"`
	CreatedBy   string    `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Product) TableName() string {
	return "products"
}

type ProductPlan struct {
	ID        string          `gorm:"column:id;primaryKey"`
	ProductID string          `gorm:"column:product_id;index"`
	Code      string          `gorm:"column:code"`
	Name      string          `gorm:"column:name"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (ProductPlan) TableName() string {
	return "product_plans"
}

type Affiliate struct {
	ID       string `gorm:"column:id;primaryKey"`
	TenantID string `gorm:"column:tenant_id;index"`
	Status   string `gorm:"column:status"`
}

func (Affiliate) TableName() string {
	return "affiliates"
}

// ProductCheckoutConfig holds per-product gateway and affiliate settings.
type ProductCheckoutConfig struct {
	ID                       string              `gorm:"column:id;primaryKey"`
	TenantID                 string              `gorm:"column:tenant_id;index:idx_checkout_configs_tenant_product,priority:1"`
	ProductID                string              `gorm:"column:product_id;index:idx_checkout_configs_tenant_product,priority:2"`
	PaymentGatewayID         *string             `gorm:"column:payment_gateway_id"`
	AffiliateCommissionType  string              `gorm:"column:affiliate_commission_type"`
	AffiliateCommissionValue decimal.NullDecimal `gorm:"column:affiliate_commission_value;type:numeric(12,2)"`
}

func (ProductCheckoutConfig) TableName() string {
	return "product_checkout_configs"
}
