package checkout

import (
	"vendas-platform/pkg/server"
	"vendas-platform/services/gateway"
	"vendas-platform/services/pagarme"
	"vendas-platform/services/pagseguro"

	"go.uber.org/fx"
)

func asLinker(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(gateway.Linker)),
		fx.ResultTags(`group:"linkers"`),
	)
}

var Module = fx.Module("checkout",
	fx.Provide(
		asLinker(pagseguro.NewClient),
		asLinker(pagarme.NewClient),
		NewService,
		server.AsRoutes(NewHandler),
	),
)
