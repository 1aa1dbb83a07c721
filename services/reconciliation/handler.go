package reconciliation

import (
	"errors"
	"io"
	"net/http"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/db/pagination"
	"vendas-platform/pkg/errutil"
	"vendas-platform/services/pagarme"
	"vendas-platform/services/pagseguro"
	"vendas-platform/services/paymentevent"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type Handler struct {
	engine    *Engine
	events    paymentevent.Store
	bodyLimit int64
	pagseguro paymentevent.Parser
	pagarme   paymentevent.Parser
}

type HandlerParams struct {
	fx.In
	Config *config.Config
	Engine *Engine
	Events paymentevent.Store
}

func NewHandler(p HandlerParams) *Handler {
	limit := p.Config.Webhook.BodyLimit
	if limit <= 0 {
		limit = 1 << 20
	}
	return &Handler{
		engine:    p.Engine,
		events:    p.Events,
		bodyLimit: limit,
		pagseguro: pagseguro.NewParser(),
		pagarme:   pagarme.NewParser(),
	}
}

func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/webhooks/pagseguro", h.webhook(h.pagseguro))
	v1.POST("/webhooks/pagarme", h.webhook(h.pagarme))
	v1.GET("/payment-events", h.listEvents)
}

func (h *Handler) webhook(parser paymentevent.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				_ = c.Error(errutil.BadRequest("Corpo excede o tamanho máximo.", err,
					errutil.WithReason(paymentevent.ReasonInvalidPayload)))
				return
			}
			_ = c.Error(errutil.BadRequest("Não foi possível ler o corpo da requisição.", err,
				errutil.WithReason(paymentevent.ReasonInvalidJSON)))
			return
		}

		if _, err := h.engine.HandleWebhook(c.Request.Context(), parser, raw); err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type listEventsQuery struct {
	paymentevent.Filter
	pagination.Pagination
}

func (h *Handler) listEvents(c *gin.Context) {
	var q listEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(errutil.BadRequest("Parâmetros de consulta inválidos.", err))
		return
	}

	switch q.Provider {
	case "", paymentevent.ProviderPagSeguro, paymentevent.ProviderPagarme:
	default:
		_ = c.Error(errutil.BadRequest("Provedor desconhecido.", nil))
		return
	}
	switch q.Status {
	case "", paymentevent.StatusReceived, paymentevent.StatusProcessed, paymentevent.StatusError:
	default:
		_ = c.Error(errutil.BadRequest("Status desconhecido.", nil))
		return
	}

	rows, info, err := h.events.List(c.Request.Context(), q.Filter, q.Pagination)
	if err != nil {
		_ = c.Error(errutil.Internal("Erro ao listar eventos de pagamento.", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      rows,
		"page_info": info,
	})
}
