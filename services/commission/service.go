package commission

import (
	"context"
	"errors"
	"fmt"

	"vendas-platform/pkg/logger"
	"vendas-platform/pkg/metrics"
	"vendas-platform/pkg/repository"
	"vendas-platform/services/sale"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("commission.service",
	fx.Provide(NewService),
)

type Service struct {
	node        *snowflake.Node
	commissions repository.Repository[Commission]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node:        p.Node,
		commissions: repository.ProvideStore[Commission](p.DB),
	}
}

// EnsureCommission materialises the sale's precomputed affiliate commission
// once per (sale, affiliate). It reports whether this call inserted the row;
// an existing row, including one inserted by a concurrent caller, is success.
func (s *Service) EnsureCommission(ctx context.Context, sl *sale.Sale) (bool, error) {
	if sl == nil || !sl.HasAffiliateCommission() {
		return false, nil
	}

	log := logger.FromContext(ctx).With(
		zap.String("sale_id", sl.ID),
		zap.String("affiliate_id", *sl.AffiliateID),
	)

	existing, err := s.commissions.FindOne(ctx, &Commission{SaleID: sl.ID, AffiliateID: *sl.AffiliateID})
	if err != nil {
		metrics.CommissionsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("find commission: %w", err)
	}
	if existing != nil {
		metrics.CommissionsTotal.WithLabelValues("exists").Inc()
		log.Debug("commission already exists", zap.String("commission_id", existing.ID))
		return false, nil
	}

	c := &Commission{
		ID:          s.node.Generate().String(),
		TenantID:    sl.TenantID,
		SaleID:      sl.ID,
		AffiliateID: *sl.AffiliateID,
		Amount:      sl.ComissaoAfiliado.Decimal,
		Status:      StatusPending,
	}
	if err := s.commissions.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.CommissionsTotal.WithLabelValues("exists").Inc()
			log.Info("commission inserted concurrently")
			return false, nil
		}
		metrics.CommissionsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("create commission: %w", err)
	}

	metrics.CommissionsTotal.WithLabelValues("created").Inc()
	log.Info("commission_created_from_sale",
		zap.String("commission_id", c.ID),
		zap.String("amount", c.Amount.StringFixed(2)))
	return true, nil
}
