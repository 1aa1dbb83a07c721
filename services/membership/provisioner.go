package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vendas-platform/pkg/logger"
	"vendas-platform/pkg/metrics"
	"vendas-platform/pkg/repository"
	"vendas-platform/services/sale"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("membership.provisioner",
	fx.Provide(
		NewUserDirectory,
		NewCourseMappings,
		NewProvisioner,
	),
)

// ProvisionResult counts per-course outcomes of one provisioning run.
type ProvisionResult struct {
	Created  int
	Existing int
	Failed   int
}

type Provisioner struct {
	node        *snowflake.Node
	users       UserDirectory
	mappings    CourseMappings
	memberships repository.Repository[Membership]
	now         func() time.Time
}

type ProvisionerParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Users    UserDirectory
	Mappings CourseMappings
}

func NewProvisioner(p ProvisionerParams) *Provisioner {
	return &Provisioner{
		node:        p.Node,
		users:       p.Users,
		mappings:    p.Mappings,
		memberships: repository.ProvideStore[Membership](p.DB),
		now:         time.Now,
	}
}

// ProvisionMemberships grants the buyer of a paid sale one active membership
// per course mapped to the sale's product. Any existing membership for the
// (tenant, user, course) blocks creation whatever its status. Per-course
// failures are logged and counted; only lookup failures are returned.
func (p *Provisioner) ProvisionMemberships(ctx context.Context, sl *sale.Sale) (*ProvisionResult, error) {
	result := &ProvisionResult{}
	if sl == nil || sl.Status != sale.StatusPaid {
		return result, nil
	}

	log := logger.FromContext(ctx).With(zap.String("sale_id", sl.ID), zap.String("tenant_id", sl.TenantID))

	email := strings.TrimSpace(sl.BuyerEmail)
	if email == "" {
		log.Info("membership_skip_no_buyer_email")
		return result, nil
	}

	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return result, err
	}
	if user == nil {
		log.Info("membership_user_not_found_for_email", zap.String("buyer_email", email))
		return result, nil
	}

	courseIDs, err := p.mappings.CourseIDs(ctx, sl.TenantID, sl.ProductID)
	if err != nil {
		return result, err
	}
	if len(courseIDs) == 0 {
		log.Info("membership_no_course_mapping", zap.String("product_id", sl.ProductID))
		return result, nil
	}

	for _, courseID := range courseIDs {
		clog := log.With(zap.String("course_id", courseID), zap.String("user_id", user.ID))

		created, err := p.ensureMembership(ctx, sl, user.ID, courseID)
		switch {
		case err != nil:
			result.Failed++
			metrics.MembershipsTotal.WithLabelValues("error").Inc()
			clog.Error("failed to provision membership", zap.Error(err))
		case created:
			result.Created++
			metrics.MembershipsTotal.WithLabelValues("created").Inc()
			clog.Info("membership_created_from_sale")
		default:
			result.Existing++
			metrics.MembershipsTotal.WithLabelValues("exists").Inc()
		}
	}

	return result, nil
}

func (p *Provisioner) ensureMembership(ctx context.Context, sl *sale.Sale, userID, courseID string) (bool, error) {
	existing, err := p.memberships.FindOne(ctx, &Membership{
		TenantID: sl.TenantID,
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		return false, fmt.Errorf("find membership: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	m := &Membership{
		ID:        p.node.Generate().String(),
		TenantID:  sl.TenantID,
		UserID:    userID,
		CourseID:  courseID,
		SaleID:    sl.ID,
		Status:    StatusActive,
		StartedAt: p.now(),
	}
	if err := p.memberships.Create(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("create membership: %w", err)
	}
	return true, nil
}
