package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"vendas-platform/pkg/errutil"
	"vendas-platform/services/paymentevent"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/v1/checkout", h.create)
}

func (h *Handler) create(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 64<<10))
	if err != nil {
		_ = c.Error(errutil.BadRequest("Corpo JSON inválido.", err, errutil.WithReason("invalid_json")))
		return
	}

	var req Request
	if err := json.Unmarshal(paymentevent.NormalizeBody(raw), &req); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			_ = c.Error(errutil.BadRequest("Corpo JSON inválido.", err, errutil.WithReason("invalid_json")))
			return
		}
		_ = c.Error(errutil.BadRequest("Corpo inválido.", err, errutil.WithReason("invalid_body")))
		return
	}

	resp, err := h.svc.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
