package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/errutil"
	"vendas-platform/pkg/health"
	"vendas-platform/pkg/server"
	"vendas-platform/services/gateway"
	"vendas-platform/services/sale"
	"vendas-platform/services/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
	gin.SetMode(gin.TestMode)
}

const (
	activeAffiliate   = "6f1c2b1e-8d2a-4c55-9a53-0e1b5f6a7c10"
	inactiveAffiliate = "0b7e4c8a-1f9d-4e6b-8a2c-3d5f7e9a1b2c"
	foreignAffiliate  = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

type fakeSequence struct{ n int }

func (f *fakeSequence) NextTransactionCode(ctx context.Context, tenantID string) (string, error) {
	f.n++
	return fmt.Sprintf("TXN-251019-%05dAB", f.n), nil
}

type fakeLinker struct {
	provider gateway.Provider
	got      []gateway.LinkRequest
	err      error
}

func (f *fakeLinker) Provider() gateway.Provider { return f.provider }

func (f *fakeLinker) CreatePaymentLink(ctx context.Context, req gateway.LinkRequest) (string, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return "", f.err
	}
	return "https://pay.example/" + string(f.provider) + "/" + req.SaleID, nil
}

type fixture struct {
	svc       *Service
	db        *gorm.DB
	pagseguro *fakeLinker
	pagarme   *fakeLinker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t,
		&Product{}, &ProductPlan{}, &Affiliate{}, &ProductCheckoutConfig{},
		&gateway.PaymentGateway{}, &sale.Sale{},
	)

	base := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create([]*Product{
		{ID: "prod-1", TenantID: "tenant-1", Code: "GO101", Name: "Curso de Go", PublicSlug: "curso-de-go", IsPublic: true, Status: "active", CreatedBy: "producer-1"},
		{ID: "prod-2", TenantID: "tenant-1", Code: "DRAFT", Name: "Rascunho", PublicSlug: "rascunho", IsPublic: true, Status: "draft"},
		{ID: "prod-3", TenantID: "tenant-1", Code: "NOPLAN", Name: "Sem plano", PublicSlug: "sem-plano", IsPublic: true, Status: "active"},
		{ID: "prod-4", TenantID: "tenant-1", Code: "PGME", Name: "Mentoria", PublicSlug: "mentoria", IsPublic: true, Status: "active"},
	}).Error)
	require.NoError(t, db.Create([]*ProductPlan{
		{ID: "plan-late", ProductID: "prod-1", Price: decimal.RequireFromString("297"), CreatedAt: base.Add(time.Hour)},
		{ID: "plan-first", ProductID: "prod-1", Price: decimal.RequireFromString("200"), CreatedAt: base},
		{ID: "plan-4", ProductID: "prod-4", Price: decimal.RequireFromString("50"), CreatedAt: base},
	}).Error)
	require.NoError(t, db.Create([]*Affiliate{
		{ID: activeAffiliate, TenantID: "tenant-1", Status: "active"},
		{ID: inactiveAffiliate, TenantID: "tenant-1", Status: "blocked"},
		{ID: foreignAffiliate, TenantID: "tenant-2", Status: "active"},
	}).Error)
	gwID := "gw-pagarme"
	require.NoError(t, db.Create(&gateway.PaymentGateway{ID: gwID, TenantID: "tenant-1", Provider: "pagarme"}).Error)
	require.NoError(t, db.Create([]*ProductCheckoutConfig{
		{ID: "cfg-1", TenantID: "tenant-1", ProductID: "prod-1", AffiliateCommissionType: "percent",
			AffiliateCommissionValue: decimal.NewNullDecimal(decimal.RequireFromString("10"))},
		{ID: "cfg-4", TenantID: "tenant-1", ProductID: "prod-4", PaymentGatewayID: &gwID, AffiliateCommissionType: "fixed",
			AffiliateCommissionValue: decimal.NewNullDecimal(decimal.RequireFromString("80"))},
	}).Error)

	ps := &fakeLinker{provider: gateway.ProviderPagSeguro}
	pm := &fakeLinker{provider: gateway.ProviderPagarme}
	svc := NewService(ServiceParams{
		DB:       db,
		Sales:    sale.NewStore(sale.StoreParams{DB: db}),
		Sequence: &fakeSequence{},
		Linkers:  []gateway.Linker{ps, pm},
	})
	var seq int
	svc.newSaleID = func() string {
		seq++
		return fmt.Sprintf("sale-%d", seq)
	}

	return &fixture{svc: svc, db: db, pagseguro: ps, pagarme: pm}
}

func validRequest() Request {
	return Request{
		Slug:          "curso-de-go",
		PaymentMethod: "pix",
		AffiliateID:   activeAffiliate,
		Buyer:         Buyer{Name: "Maria Silva", Email: "maria@example.com", Document: "12345678900"},
	}
}

func (f *fixture) loadSale(t *testing.T, id string) *sale.Sale {
	t.Helper()
	var s sale.Sale
	require.NoError(t, f.db.First(&s, "id = ?", id).Error)
	return &s
}

func TestCreateCheckoutWithAffiliate(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateCheckout(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "TXN-251019-00001AB", resp.TransactionCode)
	require.Equal(t, "https://pay.example/pagseguro/"+resp.SaleID, resp.CheckoutURL)

	s := f.loadSale(t, resp.SaleID)
	require.Equal(t, sale.StatusAwaitingPayment, s.Status)
	require.Equal(t, sale.PaymentMethodPix, s.PaymentMethod)
	require.Equal(t, "plan-first", s.PlanID)
	require.Equal(t, "producer-1", s.ProducerID)
	require.Equal(t, "200.00", s.ValorLiquido.StringFixed(2))
	require.NotNil(t, s.AffiliateID)
	require.Equal(t, activeAffiliate, *s.AffiliateID)
	require.True(t, s.ComissaoAfiliado.Valid)
	require.Equal(t, "20.00", s.ComissaoAfiliado.Decimal.StringFixed(2))

	require.Len(t, f.pagseguro.got, 1)
	require.Equal(t, resp.TransactionCode, f.pagseguro.got[0].TransactionCode)
	require.Equal(t, "Curso de Go", f.pagseguro.got[0].ProductName)
}

func TestCreateCheckoutIgnoresUnusableAffiliates(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{inactiveAffiliate, foreignAffiliate, "11111111-2222-4333-8444-555555555555", ""} {
		req := validRequest()
		req.AffiliateID = id
		resp, err := f.svc.CreateCheckout(context.Background(), req)
		require.NoError(t, err, id)

		s := f.loadSale(t, resp.SaleID)
		require.Nil(t, s.AffiliateID, id)
		require.False(t, s.ComissaoAfiliado.Valid, id)
	}
}

func TestCreateCheckoutUsesConfiguredPagarme(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.Slug = "mentoria"
	req.PaymentMethod = "card"
	resp, err := f.svc.CreateCheckout(context.Background(), req)
	require.NoError(t, err)
	require.Contains(t, resp.CheckoutURL, "/pagarme/")
	require.Empty(t, f.pagseguro.got)

	s := f.loadSale(t, resp.SaleID)
	require.Equal(t, sale.PaymentMethodCard, s.PaymentMethod)
	// fixed 80 on a 50 plan is clamped to the price
	require.Equal(t, "50.00", s.ComissaoAfiliado.Decimal.StringFixed(2))
}

func TestCreateCheckoutErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mut    func(r *Request)
		code   errutil.CoreStatus
		reason string
	}{
		{"unknown slug", func(r *Request) { r.Slug = "nao-existe" }, errutil.StatusNotFound, "product_not_found"},
		{"inactive product", func(r *Request) { r.Slug = "rascunho" }, errutil.StatusNotFound, "product_not_found"},
		{"no plan", func(r *Request) { r.Slug = "sem-plano" }, errutil.StatusBadRequest, "plan_not_configured"},
		{"bad method", func(r *Request) { r.PaymentMethod = "crypto" }, errutil.StatusBadRequest, "invalid_body"},
		{"bad slug", func(r *Request) { r.Slug = "Curso De Go" }, errutil.StatusBadRequest, "invalid_body"},
		{"short name", func(r *Request) { r.Buyer.Name = "Jo" }, errutil.StatusBadRequest, "invalid_body"},
		{"bad email", func(r *Request) { r.Buyer.Email = "maria" }, errutil.StatusBadRequest, "invalid_body"},
		{"short document", func(r *Request) { r.Buyer.Document = "123" }, errutil.StatusBadRequest, "invalid_body"},
		{"affiliate not uuid", func(r *Request) { r.AffiliateID = "aff-1" }, errutil.StatusBadRequest, "invalid_body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mut(&req)
			_, err := f.svc.CreateCheckout(context.Background(), req)
			be, ok := errutil.As(err)
			require.True(t, ok)
			require.Equal(t, tt.code, be.Code)
			require.Equal(t, tt.reason, be.Reason)
		})
	}
}

func TestCreateCheckoutValidationDetails(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Buyer.Email = "x"

	_, err := f.svc.CreateCheckout(context.Background(), req)
	be, ok := errutil.As(err)
	require.True(t, ok)
	require.Len(t, be.Details, 1)
	require.Equal(t, "buyer.email", be.Details[0].Field)
}

func TestCreateCheckoutGatewayFailure(t *testing.T) {
	f := newFixture(t)
	f.pagseguro.err = errutil.BadGateway("Erro ao criar link de pagamento no PagSeguro.", nil,
		errutil.WithReason("pagseguro_checkout_error"))

	_, err := f.svc.CreateCheckout(context.Background(), validRequest())
	be, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, be.Code.HTTPStatus())
}

func TestCheckoutHandler(t *testing.T) {
	f := newFixture(t)
	r := server.NewRouter(server.RouterParams{
		Config: &config.Config{},
		Health: health.ProvideHealth(health.HealthParams{}),
		Routes: []server.Routes{NewHandler(f.svc)},
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(body)))
		return w
	}

	w := post(`{"slug":"curso-de-go","payment_method":"boleto","buyer":{"name":"Maria Silva","email":"maria@example.com","document":"12345678900"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"transaction_code":"TXN-251019-00001AB"`)

	w = post(`{"slug":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"invalid_json"`)

	w = post(``)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"invalid_body"`)

	w = post(`{"slug":"nao-existe","payment_method":"pix","buyer":{"name":"Maria Silva","email":"maria@example.com","document":"12345678900"}}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"product_not_found","message":"Produto não encontrado ou inativo."}`, w.Body.String())
}
