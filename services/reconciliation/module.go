package reconciliation

import (
	"vendas-platform/pkg/server"

	"go.uber.org/fx"
)

var Module = fx.Module("reconciliation",
	fx.Provide(
		NewEngine,
		server.AsRoutes(NewHandler),
	),
)

// WorkerModule registers the follow-up task handlers on the asynq mux.
var WorkerModule = fx.Module("reconciliation.worker",
	fx.Provide(NewEngine, NewTask),
	fx.Invoke(RegisterTasks),
)
