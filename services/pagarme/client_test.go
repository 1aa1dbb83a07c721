package pagarme

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/errutil"
	"vendas-platform/services/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Pagarme.APIKey = "sk_test"
	cfg.Pagarme.BaseURL = srv.URL + "/"
	return NewClient(cfg)
}

func linkRequest() gateway.LinkRequest {
	return gateway.LinkRequest{
		SaleID:          "sale-1",
		TransactionCode: "TXN-1",
		ProductName:     "Curso de Go",
		Amount:          decimal.RequireFromString("197.90"),
		Buyer:           gateway.Buyer{Name: "Maria Silva", Email: "maria@example.com"},
	}
}

func TestCreatePaymentLink(t *testing.T) {
	var got orderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "sk_test" || pass != "" || r.URL.Path != "/orders" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":"or_1","checkouts":[{"payment_url":"https://pay.example/or_1"}]}`))
	})

	link, err := c.CreatePaymentLink(context.Background(), linkRequest())
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/or_1", link)

	require.Len(t, got.Items, 1)
	require.Equal(t, int64(19790), got.Items[0].Amount)
	require.Equal(t, "sale-1", got.Items[0].Code)
	require.Equal(t, "TXN-1", got.Metadata["transaction_code"])
	require.Equal(t, "checkout", got.Payments[0].PaymentMethod)
	require.Equal(t, 30, got.Payments[0].Checkout.ExpiresIn)
}

func TestCreatePaymentLinkPrefersCheckoutURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"checkout_url":"https://a","checkout":{"payment_url":"https://b"}}`))
	})

	link, err := c.CreatePaymentLink(context.Background(), linkRequest())
	require.NoError(t, err)
	require.Equal(t, "https://a", link)
}

func TestCreatePaymentLinkErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"upstream rejects", http.StatusUnprocessableEntity, `{"message":"invalid"}`, "pagarme_checkout_error"},
		{"no url", http.StatusOK, `{"id":"or_1"}`, "pagarme_checkout_url_missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.CreatePaymentLink(context.Background(), linkRequest())
			be, ok := errutil.As(err)
			require.True(t, ok)
			require.Equal(t, errutil.StatusBadGateway, be.Code)
			require.Equal(t, tt.reason, be.Reason)
		})
	}
}

func TestCreatePaymentLinkRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.Config{}).CreatePaymentLink(context.Background(), linkRequest())
	be, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, "pagarme_config_missing", be.Reason)
}
