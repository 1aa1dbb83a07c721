package sale

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vendas-platform/pkg/db/option"
	"vendas-platform/pkg/repository"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("sale.store",
	fx.Provide(NewStore),
)

type Store interface {
	// FindByReference matches reference against transaction_code or id.
	// It returns (nil, nil) when no sale matches.
	FindByReference(ctx context.Context, reference string) (*Sale, error)
	FindByID(ctx context.Context, id string) (*Sale, error)
	Create(ctx context.Context, s *Sale) error
	// UpdateStatus overwrites status and finalized_at without comparing
	// against the current state.
	UpdateStatus(ctx context.Context, id string, status Status, finalizedAt time.Time) error
}

type store struct {
	repo repository.Repository[Sale]
}

type StoreParams struct {
	fx.In
	DB *gorm.DB
}

func NewStore(p StoreParams) Store {
	return &store{repo: repository.ProvideStore[Sale](p.DB)}
}

func (s *store) FindByReference(ctx context.Context, reference string) (*Sale, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}

	sale, err := s.repo.FindOne(ctx, nil, option.WithWhere("transaction_code = ? OR id = ?", reference, reference))
	if err != nil {
		return nil, fmt.Errorf("find sale by reference: %w", err)
	}
	return sale, nil
}

func (s *store) FindByID(ctx context.Context, id string) (*Sale, error) {
	if id == "" {
		return nil, nil
	}
	sale, err := s.repo.FindOne(ctx, &Sale{ID: id})
	if err != nil {
		return nil, fmt.Errorf("find sale: %w", err)
	}
	return sale, nil
}

func (s *store) Create(ctx context.Context, sale *Sale) error {
	if err := s.repo.Create(ctx, sale); err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

func (s *store) UpdateStatus(ctx context.Context, id string, status Status, finalizedAt time.Time) error {
	err := s.repo.Update(ctx, id, map[string]any{
		"status":       status,
		"finalized_at": finalizedAt,
		"updated_at":   finalizedAt,
	})
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	return nil
}
