package checkout

import (
	"context"
	"fmt"
	"strings"

	"vendas-platform/pkg/db/option"
	"vendas-platform/pkg/errutil"
	"vendas-platform/pkg/logger"
	"vendas-platform/pkg/metrics"
	"vendas-platform/pkg/repository"
	"vendas-platform/pkg/sequence"
	"vendas-platform/services/commission"
	"vendas-platform/services/gateway"
	"vendas-platform/services/sale"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	products  repository.Repository[Product]
	plans     repository.Repository[ProductPlan]
	affs      repository.Repository[Affiliate]
	configs   repository.Repository[ProductCheckoutConfig]
	gateways  repository.Repository[gateway.PaymentGateway]
	sales     sale.Store
	seq       sequence.Generator
	linkers   map[gateway.Provider]gateway.Linker
	validate  *validator.Validate
	newSaleID func() string
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Sales    sale.Store
	Sequence sequence.Generator
	Linkers  []gateway.Linker `group:"linkers"`
}

func NewService(p ServiceParams) *Service {
	linkers := make(map[gateway.Provider]gateway.Linker, len(p.Linkers))
	for _, l := range p.Linkers {
		linkers[l.Provider()] = l
	}

	return &Service{
		products:  repository.ProvideStore[Product](p.DB),
		plans:     repository.ProvideStore[ProductPlan](p.DB),
		affs:      repository.ProvideStore[Affiliate](p.DB),
		configs:   repository.ProvideStore[ProductCheckoutConfig](p.DB),
		gateways:  repository.ProvideStore[gateway.PaymentGateway](p.DB),
		sales:     p.Sales,
		seq:       p.Sequence,
		linkers:   linkers,
		validate:  newValidator(),
		newSaleID: uuid.NewString,
	}
}

func dbError(msg string, err error) error {
	return errutil.Internal(msg, err, errutil.WithReason("db_error"))
}

// CreateCheckout registers an awaiting-payment sale for the product's
// earliest plan and returns the provider's hosted payment page for it.
func (s *Service) CreateCheckout(ctx context.Context, req Request) (*Response, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, validationError(err)
	}

	log := logger.FromContext(ctx).With(zap.String("slug", req.Slug))

	product, err := s.products.FindOne(ctx, &Product{
		PublicSlug: req.Slug,
		IsPublic:   true,
		Status:     productStatusActive,
	})
	if err != nil {
		log.Error("checkout_create_product_error", zap.Error(err))
		return nil, dbError("Erro ao carregar produto.", err)
	}
	if product == nil {
		return nil, errutil.NotFound("Produto não encontrado ou inativo.", nil, errutil.WithReason("product_not_found"))
	}
	log = log.With(zap.String("product_id", product.ID), zap.String("tenant_id", product.TenantID))

	plan, err := s.plans.FindOne(ctx, &ProductPlan{ProductID: product.ID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "asc"}))
	if err != nil {
		log.Error("checkout_create_plan_error", zap.Error(err))
		return nil, dbError("Erro ao carregar plano.", err)
	}
	if plan == nil {
		return nil, errutil.BadRequest("Produto sem plano de preço configurado.", nil, errutil.WithReason("plan_not_configured"))
	}

	affiliateID := s.resolveAffiliate(ctx, log, product, req.AffiliateID)

	cfg, err := s.configs.FindOne(ctx, &ProductCheckoutConfig{TenantID: product.TenantID, ProductID: product.ID})
	if err != nil {
		log.Error("checkout_create_config_error", zap.Error(err))
		return nil, dbError("Erro ao carregar configuração de checkout.", err)
	}

	code, err := s.seq.NextTransactionCode(ctx, product.TenantID)
	if err != nil {
		log.Error("checkout_create_sequence_error", zap.Error(err))
		return nil, errutil.Internal("Erro ao gerar código da transação.", err)
	}

	price := plan.Price
	sl := &sale.Sale{
		ID:               s.newSaleID(),
		TenantID:         product.TenantID,
		ProducerID:       product.CreatedBy,
		AffiliateID:      affiliateID,
		ProductID:        product.ID,
		ProductCode:      product.Code,
		ProductName:      product.Name,
		ProductPrice:     price,
		PlanID:           plan.ID,
		PlanPrice:        price,
		PlanItems:        1,
		OrderBumps:       datatypes.JSON("[]"),
		TransactionCode:  code,
		PaymentMethod:    paymentMethodCode(req.PaymentMethod),
		Status:           sale.StatusAwaitingPayment,
		ValorProduto:     price,
		ValorBruto:       price,
		ValorDesconto:    decimal.Zero,
		ValorFrete:       decimal.Zero,
		ValorLiquido:     price,
		ComissaoAfiliado: affiliateCommission(affiliateID, cfg, price),
		BuyerName:        strings.TrimSpace(req.Buyer.Name),
		BuyerEmail:       strings.TrimSpace(req.Buyer.Email),
		BuyerCpfCnpj:     strings.TrimSpace(req.Buyer.Document),
	}
	if err := s.sales.Create(ctx, sl); err != nil {
		log.Error("checkout_create_sale_error", zap.Error(err))
		return nil, dbError("Erro ao registrar venda.", err)
	}
	log = log.With(zap.String("sale_id", sl.ID))

	provider, err := s.chooseGateway(ctx, cfg)
	if err != nil {
		log.Error("checkout_create_gateway_error", zap.Error(err))
		return nil, dbError("Erro ao carregar gateway de pagamento configurado.", err)
	}

	linker, ok := s.linkers[provider]
	if !ok {
		return nil, errutil.Internal(fmt.Sprintf("Gateway %s indisponível.", provider), nil)
	}

	url, err := linker.CreatePaymentLink(ctx, gateway.LinkRequest{
		SaleID:          sl.ID,
		TransactionCode: code,
		ProductName:     product.Name,
		Amount:          price,
		Buyer: gateway.Buyer{
			Name:     sl.BuyerName,
			Email:    sl.BuyerEmail,
			Document: sl.BuyerCpfCnpj,
		},
	})
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues(string(provider), "error").Inc()
		return nil, err
	}

	metrics.CheckoutsTotal.WithLabelValues(string(provider), "created").Inc()
	log.Info("checkout_create_success", zap.String("gateway", string(provider)))

	return &Response{
		SaleID:          sl.ID,
		TransactionCode: code,
		CheckoutURL:     url,
	}, nil
}

// resolveAffiliate keeps the affiliate only when it belongs to the product's
// tenant and is active. Lookup failures drop the affiliate.
func (s *Service) resolveAffiliate(ctx context.Context, log *zap.Logger, product *Product, id string) *string {
	if id == "" {
		return nil
	}

	aff, err := s.affs.FindOne(ctx, &Affiliate{ID: id})
	if err != nil {
		log.Warn("checkout_create_affiliate_lookup_error", zap.Error(err))
		return nil
	}
	if aff == nil {
		return nil
	}
	if aff.TenantID != product.TenantID || aff.Status != affiliateStatusActive {
		log.Info("checkout_create_affiliate_ignored",
			zap.String("affiliate_id", aff.ID),
			zap.String("reason", "tenant_mismatch_or_inactive"))
		return nil
	}
	return &aff.ID
}

func affiliateCommission(affiliateID *string, cfg *ProductCheckoutConfig, price decimal.Decimal) decimal.NullDecimal {
	if affiliateID == nil || cfg == nil ||
		!cfg.AffiliateCommissionValue.Valid || !cfg.AffiliateCommissionValue.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(commission.Calculate(price, commission.Rule{
		Type:  commission.ParseRuleType(cfg.AffiliateCommissionType),
		Value: cfg.AffiliateCommissionValue.Decimal,
	}))
}

func (s *Service) chooseGateway(ctx context.Context, cfg *ProductCheckoutConfig) (gateway.Provider, error) {
	if cfg == nil || cfg.PaymentGatewayID == nil || *cfg.PaymentGatewayID == "" {
		return gateway.ProviderPagSeguro, nil
	}

	gw, err := s.gateways.FindOne(ctx, &gateway.PaymentGateway{ID: *cfg.PaymentGatewayID})
	if err != nil {
		return "", err
	}
	if gw != nil && gw.Provider == string(gateway.ProviderPagarme) {
		return gateway.ProviderPagarme, nil
	}
	return gateway.ProviderPagSeguro, nil
}
