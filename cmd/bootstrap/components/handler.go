package components

import (
	"lablend/internal/handler"
	"lablend/internal/handler/api"
	"lablend/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewLoanHandler,
		api.NewDebtHandler,
		api.NewScanHandler,
		api.NewMaterialHandler,
		api.NewJobsHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
