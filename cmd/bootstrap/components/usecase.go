package components

import (
	"lablend/internal/pkg/clock"
	"lablend/internal/usecase/commands"
	"lablend/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewLoanUseCase,
		commands.NewDebtUseCase,
		commands.NewMaterialUseCase,
		commands.NewScanUseCase,
		commands.NewJobUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewLoanQueries,
		queries.NewDebtQueries,
		queries.NewMaterialQueries,
	),
)
