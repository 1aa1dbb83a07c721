package paymentevent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendas-platform/pkg/db/option"
	"vendas-platform/pkg/db/pagination"
	"vendas-platform/pkg/logger"
	"vendas-platform/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var Module = fx.Module("paymentevent.store",
	fx.Provide(NewStore),
)

type Filter struct {
	Provider Provider `form:"provider"`
	Status   Status   `form:"status"`
}

type Store interface {
	// RecordEvent inserts the event or, when (provider, eventID) already
	// exists, returns the stored row unchanged.
	RecordEvent(ctx context.Context, provider Provider, eventID, payloadHash string, rawPayload []byte) (*PaymentEvent, error)
	// MarkProcessed moves a received or errored event to processed (empty message) or
	// error. Write failures are logged, never returned.
	MarkProcessed(ctx context.Context, provider Provider, eventID, errorMessage string)
	List(ctx context.Context, filter Filter, page pagination.Pagination) ([]*PaymentEvent, *pagination.PageInfo, error)
}

type store struct {
	db   *gorm.DB
	node *snowflake.Node
	repo repository.Repository[PaymentEvent]
	now  func() time.Time
}

type StoreParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewStore(p StoreParams) Store {
	return &store{
		db:   p.DB,
		node: p.Node,
		repo: repository.ProvideStore[PaymentEvent](p.DB),
		now:  time.Now,
	}
}

func (s *store) RecordEvent(ctx context.Context, provider Provider, eventID, payloadHash string, rawPayload []byte) (*PaymentEvent, error) {
	event := &PaymentEvent{
		ID:          s.node.Generate().String(),
		Provider:    provider,
		EventID:     eventID,
		PayloadHash: payloadHash,
		Status:      StatusReceived,
		RawPayload:  datatypes.JSON(rawPayload),
	}

	err := s.repo.Create(ctx, event)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("insert payment event: %w", err)
	}

	existing, err := s.repo.FindOne(ctx, &PaymentEvent{Provider: provider, EventID: eventID})
	if err != nil {
		return nil, fmt.Errorf("fetch existing payment event: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("payment event %s/%s vanished after conflict", provider, eventID)
	}
	return existing, nil
}

func (s *store) MarkProcessed(ctx context.Context, provider Provider, eventID, errorMessage string) {
	log := logger.FromContext(ctx).With(
		zap.String("provider", string(provider)),
		zap.String("event_id", eventID),
	)

	updates := map[string]any{
		"status":        StatusProcessed,
		"processed_at":  s.now(),
		"error_message": nil,
	}
	if errorMessage != "" {
		updates["status"] = StatusError
		updates["error_message"] = errorMessage
	}

	res := s.db.WithContext(ctx).Model(&PaymentEvent{}).
		Where("provider = ? AND event_id = ? AND status IN ?", provider, eventID, []Status{StatusReceived, StatusError}).
		Updates(updates)
	if res.Error != nil {
		log.Error("failed to mark payment event", zap.Error(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		log.Warn("payment event already processed or missing")
	}
}

func (s *store) List(ctx context.Context, filter Filter, page pagination.Pagination) ([]*PaymentEvent, *pagination.PageInfo, error) {
	opts := []option.QueryOption{option.ApplyPagination(page)}

	limit := page.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 250 {
		limit = 250
	}

	rows, err := s.repo.Find(ctx, &PaymentEvent{Provider: filter.Provider, Status: filter.Status}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("list payment events: %w", err)
	}

	rows, info := pagination.BuildCursorPageInfo(rows, limit, func(e *PaymentEvent) string {
		c, _ := pagination.EncodeCursor(pagination.NewCursor(e.CreatedAt, e.ID))
		return c
	})
	return rows, info, nil
}
