package pagarme

import (
	"testing"

	"vendas-platform/pkg/errutil"
	"vendas-platform/services/paymentevent"
	"vendas-platform/services/sale"

	"github.com/stretchr/testify/require"
)

func TestParseOrderPaid(t *testing.T) {
	raw := []byte(`{
		"id": "hook_1",
		"type": "order.paid",
		"data": {
			"id": "or_1",
			"status": "paid",
			"metadata": {"transaction_code": " TXN-1 ", "sale_id": "sale-1"}
		}
	}`)

	n, err := NewParser().Parse(raw)
	require.NoError(t, err)
	require.Equal(t, paymentevent.ProviderPagarme, n.Provider)
	require.Equal(t, "hook_1", n.EventID)
	require.Equal(t, "order.paid", n.Type)
	require.Equal(t, "TXN-1", n.Reference)
	require.Equal(t, sale.StatusPaid, n.Status)
}

func TestParseFallbacks(t *testing.T) {
	n, err := NewParser().Parse([]byte(`{"data":{"id":"ch_2","status":"canceled","metadata":{"sale_id":42}}}`))
	require.NoError(t, err)
	require.Equal(t, "ch_2", n.EventID)
	require.Equal(t, "42", n.Reference)
	require.Equal(t, sale.StatusCancelled, n.Status)

	n, err = NewParser().Parse([]byte(`{"data":{"metadata":{"transaction_code":"  ","sale_id":"sale-3"}}}`))
	require.NoError(t, err)
	require.Empty(t, n.EventID)
	require.Equal(t, "sale-3", n.Reference)
	require.Equal(t, sale.StatusAwaitingPayment, n.Status)
}

func TestParseWithoutData(t *testing.T) {
	n, err := NewParser().Parse([]byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, n.EventID)
	require.Empty(t, n.Reference)
}

func TestParseRejectsWrongShape(t *testing.T) {
	for _, body := range []string{`{"data":"x"}`, `{"id":1}`, `[1,2]`, `{"data":{"metadata":[]}}`} {
		_, err := NewParser().Parse([]byte(body))
		be, ok := errutil.As(err)
		require.True(t, ok, body)
		require.Equal(t, paymentevent.ReasonInvalidPayload, be.Reason, body)
	}
}
