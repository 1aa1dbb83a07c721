package pagseguro

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/errutil"
	"vendas-platform/pkg/logger"
	"vendas-platform/services/gateway"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const (
	wsProduction       = "https://ws.pagseguro.uol.com.br"
	wsSandbox          = "https://ws.sandbox.pagseguro.uol.com.br"
	redirectProduction = "https://pagseguro.uol.com.br/v2/checkout/payment.html?code="
	redirectSandbox    = "https://sandbox.pagseguro.uol.com.br/v2/checkout/payment.html?code="

	maxDescriptionLen = 95
)

// checkoutResponse is the v2 checkout success document. Failures come back
// under an <errors> root and do not decode into it.
type checkoutResponse struct {
	XMLName xml.Name `xml:"checkout"`
	Code    string   `xml:"code"`
	Date    string   `xml:"date"`
}

// PagSeguro declares ISO-8859-1 on its XML responses.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "iso8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}

func decodeCheckoutCode(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charsetReader

	var out checkoutResponse
	if err := dec.Decode(&out); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	return strings.TrimSpace(out.Code), nil
}

// Client creates PagSeguro hosted checkouts through the v2 checkout API.
type Client struct {
	email        string
	token        string
	wsBase       string
	redirectBase string
	http         *http.Client
}

func NewClient(cfg *config.Config) *Client {
	c := &Client{
		email:        cfg.PagSeguro.Email,
		token:        cfg.PagSeguro.Token,
		wsBase:       wsSandbox,
		redirectBase: redirectSandbox,
		http:         &http.Client{Timeout: 15 * time.Second},
	}
	if cfg.PagSeguro.Env == "production" {
		c.wsBase = wsProduction
		c.redirectBase = redirectProduction
	}
	return c
}

func (c *Client) Provider() gateway.Provider {
	return gateway.ProviderPagSeguro
}

func (c *Client) CreatePaymentLink(ctx context.Context, req gateway.LinkRequest) (string, error) {
	if c.email == "" || c.token == "" {
		return "", errutil.Internal("Configuração do PagSeguro ausente no ambiente.", nil,
			errutil.WithReason("pagseguro_config_missing"))
	}

	log := logger.FromContext(ctx).With(zap.String("sale_id", req.SaleID))

	endpoint := fmt.Sprintf("%s/v2/checkout?email=%s&token=%s",
		c.wsBase, url.QueryEscape(c.email), url.QueryEscape(c.token))

	form := url.Values{}
	form.Set("currency", "BRL")
	form.Set("reference", req.TransactionCode)
	form.Set("itemId1", req.SaleID)
	form.Set("itemDescription1", gateway.Truncate(req.ProductName, maxDescriptionLen))
	form.Set("itemAmount1", req.Amount.StringFixed(2))
	form.Set("itemQuantity1", "1")
	form.Set("senderName", req.Buyer.Name)
	form.Set("senderEmail", req.Buyer.Email)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build pagseguro request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=ISO-8859-1")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Error("pagseguro_checkout_http_error", zap.Error(err))
		return "", errutil.BadGateway("Erro ao criar link de pagamento no PagSeguro.", err,
			errutil.WithReason("pagseguro_checkout_error"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		log.Error("pagseguro_checkout_read_error", zap.Error(err))
		return "", errutil.BadGateway("Erro ao criar link de pagamento no PagSeguro.", err,
			errutil.WithReason("pagseguro_checkout_error"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("pagseguro_checkout_http_error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", gateway.Truncate(string(body), 500)))
		return "", errutil.BadGateway("Erro ao criar link de pagamento no PagSeguro.", nil,
			errutil.WithReason("pagseguro_checkout_error"))
	}

	code, err := decodeCheckoutCode(body)
	if err == nil && code == "" {
		err = fmt.Errorf("empty checkout code")
	}
	if err != nil {
		log.Error("pagseguro_checkout_code_not_found",
			zap.String("body", gateway.Truncate(string(body), 500)),
			zap.Error(err))
		return "", errutil.BadGateway("Não foi possível obter o código de checkout do PagSeguro.", err,
			errutil.WithReason("pagseguro_checkout_code_missing"))
	}

	return c.redirectBase + url.QueryEscape(code), nil
}
