package pagarme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/errutil"
	"vendas-platform/pkg/logger"
	"vendas-platform/services/gateway"

	"go.uber.org/zap"
)

const maxDescriptionLen = 180

// Client creates Pagar.me hosted checkouts through the Core v5 orders API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:  cfg.Pagarme.APIKey,
		baseURL: strings.TrimRight(cfg.Pagarme.BaseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Provider() gateway.Provider {
	return gateway.ProviderPagarme
}

type orderItem struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Code        string `json:"code"`
}

type orderCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type checkoutSettings struct {
	ExpiresIn               int    `json:"expires_in"`
	DefaultPaymentMethod    string `json:"default_payment_method"`
	SuccessURL              string `json:"success_url"`
	SkipCheckoutSuccessPage bool   `json:"skip_checkout_success_page"`
}

type orderPayment struct {
	PaymentMethod string           `json:"payment_method"`
	Checkout      checkoutSettings `json:"checkout"`
}

type orderRequest struct {
	Items    []orderItem       `json:"items"`
	Customer orderCustomer     `json:"customer"`
	Metadata map[string]string `json:"metadata"`
	Payments []orderPayment    `json:"payments"`
}

type orderResponse struct {
	CheckoutURL string `json:"checkout_url"`
	Checkout    *struct {
		PaymentURL string `json:"payment_url"`
	} `json:"checkout"`
	Checkouts []struct {
		PaymentURL string `json:"payment_url"`
	} `json:"checkouts"`
}

func (r orderResponse) paymentURL() string {
	if r.CheckoutURL != "" {
		return r.CheckoutURL
	}
	if r.Checkout != nil && r.Checkout.PaymentURL != "" {
		return r.Checkout.PaymentURL
	}
	if len(r.Checkouts) > 0 {
		return r.Checkouts[0].PaymentURL
	}
	return ""
}

func (c *Client) CreatePaymentLink(ctx context.Context, req gateway.LinkRequest) (string, error) {
	if c.apiKey == "" {
		return "", errutil.Internal("Configuração do Pagar.me ausente no ambiente.", nil,
			errutil.WithReason("pagarme_config_missing"))
	}

	log := logger.FromContext(ctx).With(zap.String("sale_id", req.SaleID))

	payload := orderRequest{
		Items: []orderItem{{
			Amount:      req.Amount.Shift(2).Round(0).IntPart(),
			Description: gateway.Truncate(req.ProductName, maxDescriptionLen),
			Quantity:    1,
			Code:        req.SaleID,
		}},
		Customer: orderCustomer{Name: req.Buyer.Name, Email: req.Buyer.Email},
		Metadata: map[string]string{
			"sale_id":          req.SaleID,
			"transaction_code": req.TransactionCode,
		},
		Payments: []orderPayment{{
			PaymentMethod: "checkout",
			Checkout: checkoutSettings{
				ExpiresIn:            30,
				DefaultPaymentMethod: "credit_card",
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal pagarme order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build pagarme request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.apiKey, "")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Error("pagarme_checkout_http_error", zap.Error(err))
		return "", errutil.BadGateway("Erro ao criar link de pagamento no Pagar.me.", err,
			errutil.WithReason("pagarme_checkout_error"))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("pagarme_checkout_http_error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", gateway.Truncate(string(respBody), 500)))
		return "", errutil.BadGateway("Erro ao criar link de pagamento no Pagar.me.", nil,
			errutil.WithReason("pagarme_checkout_error"))
	}

	var order orderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		log.Error("pagarme_checkout_invalid_response", zap.Error(err))
	}

	link := order.paymentURL()
	if link == "" {
		log.Error("pagarme_checkout_url_not_found", zap.String("body", gateway.Truncate(string(respBody), 500)))
		return "", errutil.BadGateway("Não foi possível obter a URL de checkout do Pagar.me.", nil,
			errutil.WithReason("pagarme_checkout_url_missing"))
	}
	return link, nil
}
