package paymentevent

import (
	"context"
	"sync"
	"testing"
	"time"

	"vendas-platform/pkg/db/pagination"
	"vendas-platform/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestStore(t *testing.T) (*store, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &PaymentEvent{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewStore(StoreParams{DB: db, Node: node}).(*store), db
}

func TestRecordEventReturnsExistingOnConflict(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	first, err := s.RecordEvent(ctx, ProviderPagSeguro, "NC-1", "hash-1", []byte(`{"status":3}`))
	require.NoError(t, err)
	require.Equal(t, StatusReceived, first.Status)

	second, err := s.RecordEvent(ctx, ProviderPagSeguro, "NC-1", "hash-2", []byte(`{"status":7}`))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "hash-1", second.PayloadHash)

	// Same event id under another provider is a different event.
	other, err := s.RecordEvent(ctx, ProviderPagarme, "NC-1", "hash-3", []byte(`{}`))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)

	var n int64
	require.NoError(t, db.Model(&PaymentEvent{}).Count(&n).Error)
	require.EqualValues(t, 2, n)
}

func TestRecordEventConcurrentDeliveries(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 5)
	errs := make([]error, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev, err := s.RecordEvent(ctx, ProviderPagarme, "or_123", "h", []byte(`{}`))
			errs[i] = err
			if ev != nil {
				ids[i] = ev.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}

	var n int64
	require.NoError(t, db.Model(&PaymentEvent{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestMarkProcessedTransitionsOnce(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	_, err := s.RecordEvent(ctx, ProviderPagSeguro, "NC-1", "h", []byte(`{}`))
	require.NoError(t, err)

	s.MarkProcessed(ctx, ProviderPagSeguro, "NC-1", "")
	s.MarkProcessed(ctx, ProviderPagSeguro, "NC-1", "late failure")

	got, err := s.RecordEvent(ctx, ProviderPagSeguro, "NC-1", "h", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, StatusProcessed, got.Status)
	require.True(t, got.IsProcessed())
	require.Nil(t, got.ErrorMessage)
	require.NotNil(t, got.ProcessedAt)
	require.True(t, got.ProcessedAt.Equal(fixed))
}

func TestMarkProcessedWithErrorMessage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordEvent(ctx, ProviderPagarme, "evt-1", "h", []byte(`{}`))
	require.NoError(t, err)

	s.MarkProcessed(ctx, ProviderPagarme, "evt-1", "commission: connection reset")

	got, err := s.RecordEvent(ctx, ProviderPagarme, "evt-1", "h", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, StatusError, got.Status)
	require.False(t, got.IsProcessed())
	require.NotNil(t, got.ErrorMessage)
	require.Equal(t, "commission: connection reset", *got.ErrorMessage)
}

func TestMarkProcessedClearsEarlierError(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordEvent(ctx, ProviderPagarme, "evt-1", "h", []byte(`{}`))
	require.NoError(t, err)

	s.MarkProcessed(ctx, ProviderPagarme, "evt-1", "membership: some courses could not be provisioned")
	s.MarkProcessed(ctx, ProviderPagarme, "evt-1", "")

	got, err := s.RecordEvent(ctx, ProviderPagarme, "evt-1", "h", []byte(`{}`))
	require.NoError(t, err)
	require.True(t, got.IsProcessed())
	require.Nil(t, got.ErrorMessage)
}

func TestMarkProcessedMissingEventIsLoggedOnly(t *testing.T) {
	s, _ := newTestStore(t)
	require.NotPanics(t, func() {
		s.MarkProcessed(context.Background(), ProviderPagarme, "ghost", "")
	})
}

func TestListFiltersAndPaginates(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		ev, err := s.RecordEvent(ctx, ProviderPagSeguro, id, "h", []byte(`{}`))
		require.NoError(t, err)
		require.NoError(t, db.Model(ev).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}
	_, err := s.RecordEvent(ctx, ProviderPagarme, "p1", "h", []byte(`{}`))
	require.NoError(t, err)
	s.MarkProcessed(ctx, ProviderPagSeguro, "e1", "")

	rows, info, err := s.List(ctx, Filter{Provider: ProviderPagSeguro}, pagination.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "e3", rows[0].EventID)
	require.Equal(t, "e2", rows[1].EventID)
	require.True(t, info.HasMore)

	rows, info, err = s.List(ctx, Filter{Provider: ProviderPagSeguro}, pagination.Pagination{Limit: 2, Cursor: info.NextCursor})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "e1", rows[0].EventID)
	require.False(t, info.HasMore)

	processed, _, err := s.List(ctx, Filter{Status: StatusProcessed}, pagination.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, processed, 1)
	require.Equal(t, "e1", processed[0].EventID)
}
