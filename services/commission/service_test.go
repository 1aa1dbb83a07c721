package commission

import (
	"context"
	"errors"
	"sync"
	"testing"

	"vendas-platform/pkg/db/option"
	"vendas-platform/pkg/repository"
	"vendas-platform/services/sale"
	"vendas-platform/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type repoMock[T any] struct {
	repository.Repository[T]
	findOneFn func(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	createFn  func(ctx context.Context, resource *T) error
}

func (m *repoMock[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	if m.findOneFn != nil {
		return m.findOneFn(ctx, query, opts...)
	}
	return nil, nil
}

func (m *repoMock[T]) Create(ctx context.Context, resource *T) error {
	if m.createFn != nil {
		return m.createFn(ctx, resource)
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &Commission{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node}), db
}

func affiliateSale(price string, rule Rule) *sale.Sale {
	aff := "aff-1"
	return &sale.Sale{
		ID:               "sale-1",
		TenantID:         "tenant-1",
		AffiliateID:      &aff,
		ProductPrice:     decimal.RequireFromString(price),
		Status:           sale.StatusPaid,
		ComissaoAfiliado: decimal.NewNullDecimal(Calculate(decimal.RequireFromString(price), rule)),
	}
}

func countCommissions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&Commission{}).Count(&n).Error)
	return n
}

func TestEnsureCommissionCreatesOnceWithPrecomputedAmount(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	s := affiliateSale("200.00", Rule{Type: RulePercent, Value: decimal.NewFromInt(10)})

	created, err := svc.EnsureCommission(ctx, s)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.EnsureCommission(ctx, s)
	require.NoError(t, err)
	require.False(t, created)

	var rows []Commission
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.True(t, rows[0].Amount.Equal(decimal.RequireFromString("20.00")), "amount %s", rows[0].Amount)
	require.Equal(t, StatusPending, rows[0].Status)
	require.Equal(t, "tenant-1", rows[0].TenantID)
}

func TestEnsureCommissionSkipsWithoutAffiliateOrAmount(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	noAffiliate := affiliateSale("200.00", Rule{Type: RulePercent, Value: decimal.NewFromInt(10)})
	noAffiliate.AffiliateID = nil
	created, err := svc.EnsureCommission(ctx, noAffiliate)
	require.NoError(t, err)
	require.False(t, created)

	zero := affiliateSale("200.00", Rule{Type: RuleFixed, Value: decimal.Zero})
	created, err = svc.EnsureCommission(ctx, zero)
	require.NoError(t, err)
	require.False(t, created)

	require.Zero(t, countCommissions(t, db))
}

func TestEnsureCommissionInsertConflictIsSuccess(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	store := svc.commissions

	// Both callers miss the existence check and race to insert.
	svc.commissions = &repoMock[Commission]{
		findOneFn: func(ctx context.Context, _ *Commission, _ ...option.QueryOption) (*Commission, error) {
			return nil, nil
		},
		createFn: store.Create,
	}

	s := affiliateSale("200.00", Rule{Type: RulePercent, Value: decimal.NewFromInt(10)})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []bool
		errs    []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.EnsureCommission(ctx, s)
			mu.Lock()
			defer mu.Unlock()
			results = append(results, created)
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	require.NoError(t, errors.Join(errs...))
	require.ElementsMatch(t, []bool{true, false}, results)
	require.EqualValues(t, 1, countCommissions(t, db))
}

func TestEnsureCommissionPropagatesLookupFailure(t *testing.T) {
	svc, _ := newTestService(t)
	svc.commissions = &repoMock[Commission]{
		findOneFn: func(ctx context.Context, _ *Commission, _ ...option.QueryOption) (*Commission, error) {
			return nil, errors.New("connection reset")
		},
	}

	created, err := svc.EnsureCommission(context.Background(), affiliateSale("100", Rule{Type: RuleFixed, Value: decimal.NewFromInt(5)}))
	require.Error(t, err)
	require.False(t, created)
}
