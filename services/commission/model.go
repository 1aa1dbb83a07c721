package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

type Commission struct {
	ID          string          `gorm:"column:id;primaryKey"`
	TenantID    string          `gorm:"column:tenant_id;index"`
	SaleID      string          `gorm:"column:sale_id;uniqueIndex:ux_commissions_sale_affiliate,priority:1"`
	AffiliateID string          `gorm:"column:affiliate_id;uniqueIndex:ux_commissions_sale_affiliate,priority:2"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2)"`
	Status      Status          `gorm:"column:status;default:pending"`
	PaidAt      *time.Time      `gorm:"column:paid_at"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
}

func (Commission) TableName() string {
	return "commissions"
}
