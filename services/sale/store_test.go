package sale

import (
	"context"
	"errors"
	"testing"
	"time"

	"vendas-platform/services/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSale(id, code string) *Sale {
	return &Sale{
		ID:              id,
		TenantID:        "tenant-1",
		ProductID:       "product-1",
		ProductPrice:    decimal.RequireFromString("200.00"),
		TransactionCode: code,
		PaymentMethod:   PaymentMethodPix,
		Status:          StatusAwaitingPayment,
		ValorBruto:      decimal.RequireFromString("200.00"),
		BuyerEmail:      "buyer@example.com",
	}
}

func TestFindByReferenceMatchesCodeOrID(t *testing.T) {
	db := testutil.NewTestDB(t, &Sale{})
	s := NewStore(StoreParams{DB: db})
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newSale("1001", "TXN-251019-001AB")))

	byCode, err := s.FindByReference(ctx, "TXN-251019-001AB")
	require.NoError(t, err)
	require.Equal(t, "1001", byCode.ID)

	byID, err := s.FindByReference(ctx, " 1001 ")
	require.NoError(t, err)
	require.Equal(t, "TXN-251019-001AB", byID.TransactionCode)
	require.True(t, byID.ProductPrice.Equal(decimal.RequireFromString("200")))

	missing, err := s.FindByReference(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	empty, err := s.FindByReference(ctx, "  ")
	require.NoError(t, err)
	require.Nil(t, empty)
}

func TestCreateRejectsDuplicateTransactionCode(t *testing.T) {
	db := testutil.NewTestDB(t, &Sale{})
	s := NewStore(StoreParams{DB: db})
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newSale("1", "TXN-A")))
	err := s.Create(ctx, newSale("2", "TXN-A"))
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestUpdateStatusOverwritesUnconditionally(t *testing.T) {
	db := testutil.NewTestDB(t, &Sale{})
	s := NewStore(StoreParams{DB: db})
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newSale("1", "TXN-A")))

	now := time.Date(2025, 10, 19, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateStatus(ctx, "1", StatusPaid, now))
	require.NoError(t, s.UpdateStatus(ctx, "1", StatusAwaitingPayment, now.Add(time.Minute)))

	got, err := s.FindByID(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, StatusAwaitingPayment, got.Status)
	require.NotNil(t, got.FinalizedAt)
	require.True(t, got.FinalizedAt.Equal(now.Add(time.Minute)))
}

func TestHasAffiliateCommission(t *testing.T) {
	aff := "aff-1"
	s := newSale("1", "TXN-A")
	require.False(t, s.HasAffiliateCommission())

	s.AffiliateID = &aff
	require.False(t, s.HasAffiliateCommission())

	s.ComissaoAfiliado = decimal.NewNullDecimal(decimal.Zero)
	require.False(t, s.HasAffiliateCommission())

	s.ComissaoAfiliado = decimal.NewNullDecimal(decimal.RequireFromString("20.00"))
	require.True(t, s.HasAffiliateCommission())
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "paid", StatusPaid.String())
	require.Equal(t, "cancelled", StatusCancelled.String())
	require.Equal(t, "awaiting_payment", StatusAwaitingPayment.String())
	require.Equal(t, "provider_status", Status(5).String())
}
