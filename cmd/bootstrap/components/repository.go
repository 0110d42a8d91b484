package components

import (
	"lablend/internal/infra/db"
	"lablend/internal/infra/readstore"
	repo_impl "lablend/internal/infra/repository"
	"lablend/internal/infra/stockledger"
	"lablend/internal/pkg/config"
	"lablend/internal/usecase/commands"
	"lablend/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		NewCommandsDB,
		fx.Annotate(
			repo_impl.NewLoanRepository,
			fx.As(new(commands.LoanRepository)),
		),
		fx.Annotate(
			repo_impl.NewDebtRepository,
			fx.As(new(commands.DebtRepository)),
		),
		fx.Annotate(
			repo_impl.NewTokenRepository,
			fx.As(new(commands.TokenRepository)),
		),
		fx.Annotate(
			repo_impl.NewMaterialRepository,
			fx.As(new(commands.MaterialRepository)),
		),
		fx.Annotate(
			repo_impl.NewNotificationRepository,
			fx.As(new(commands.NotificationRepository)),
		),
		// Stock counters live in Redis; the same ledger serves the write
		// side and availability reads.
		fx.Annotate(
			stockledger.NewRedisLedger,
			fx.As(new(commands.StockLedger)),
			fx.As(new(queries.StockReader)),
		),
		// Read-side stores for queries
		fx.Annotate(
			NewLoanReadStore,
			fx.As(new(queries.LoanReadStore)),
		),
		fx.Annotate(
			NewDebtReadStore,
			fx.As(new(queries.DebtReadStore)),
		),
		fx.Annotate(
			readstore.NewMaterialReadStore,
			fx.As(new(queries.MaterialReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewCommandsDB(pool *pgxpool.Pool) commands.DB {
	return pool
}

func NewLoanReadStore(dbtx db.DBTX, cfg config.Config) *readstore.LoanReadStore {
	return readstore.NewLoanReadStore(dbtx, cfg.Lending.ScanHost)
}

func NewDebtReadStore(dbtx db.DBTX, cfg config.Config) *readstore.DebtReadStore {
	return readstore.NewDebtReadStore(dbtx, cfg.Lending.ScanHost)
}
