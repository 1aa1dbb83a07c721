package server

import (
	"vendas-platform/pkg/config"
	"vendas-platform/pkg/errutil"
	"vendas-platform/pkg/health"
	"vendas-platform/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Routes is implemented by every service that mounts HTTP endpoints.
type Routes interface {
	Register(r gin.IRouter)
}

// AsRoutes annotates a constructor so its result joins the "routes" group.
func AsRoutes(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Routes)),
		fx.ResultTags(`group:"routes"`),
	)
}

type RouterParams struct {
	fx.In
	Config *config.Config
	Health health.HealthService
	Routes []Routes `group:"routes"`
}

func NewRouter(p RouterParams) *gin.Engine {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.AccessLog(),
		middleware.Error(),
	)
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		_ = c.Error(errutil.MethodNotAllowed("Método não permitido.", nil, errutil.WithReason("method_not_allowed")))
	})
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(errutil.NotFound("Rota não encontrada.", nil))
	})

	health.Register(r, p.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	for _, routes := range p.Routes {
		routes.Register(r)
	}

	return r
}
