package bootstrap

import (
	"context"
	"fmt"

	"vendas-platform/services/checkout"
	"vendas-platform/services/commission"
	"vendas-platform/services/gateway"
	"vendas-platform/services/membership"
	"vendas-platform/services/paymentevent"
	"vendas-platform/services/sale"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	models []any
}

// Models lists every table the billing services read or write.
func Models() []any {
	return []any{
		&paymentevent.PaymentEvent{},
		&sale.Sale{},
		&commission.Commission{},
		&membership.Membership{},
		&membership.User{},
		&membership.CourseProduct{},
		&checkout.Product{},
		&checkout.ProductPlan{},
		&checkout.Affiliate{},
		&checkout.ProductCheckoutConfig{},
		&gateway.PaymentGateway{},
	}
}

// Migrate creates or alters tables and the unique indexes reconciliation
// relies on: payment_events (provider, event_id), commissions
// (sale_id, affiliate_id) and memberships (tenant_id, user_id, course_id).
func (s *Service) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(s.models...); err != nil {
		zap.L().Error("[bootstrap] auto migrate failed", zap.Error(err))
		return fmt.Errorf("auto migrate: %w", err)
	}
	zap.L().Info("[bootstrap] schema migrated", zap.Int("tables", len(s.models)))
	return nil
}
