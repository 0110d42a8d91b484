package commands

import (
	"context"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"
	"lablend/internal/domain/token"
	"lablend/internal/infra/db"
	"lablend/internal/infra/repository"
	"lablend/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// DB is the slice of the connection pool the write side needs: plain
// statement execution plus transaction start. *pgxpool.Pool satisfies it.
type DB interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type LoanRepository interface {
	Create(ctx context.Context, q db.DBTX, l *loan.Loan) error
	FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*loan.Loan, error)
	MarkActivated(ctx context.Context, q db.DBTX, id uuid.UUID, startedAt time.Time) error
	ExpireDue(ctx context.Context, q db.DBTX, now time.Time) (int64, error)
	FindDueWithout(ctx context.Context, q db.DBTX, horizon time.Time) ([]*loan.Loan, error)
	FindConvertible(ctx context.Context, q db.DBTX, cutoff time.Time) ([]*loan.Loan, error)
	SetReturnToken(ctx context.Context, q db.DBTX, id uuid.UUID, value string) error
	Delete(ctx context.Context, q db.DBTX, id uuid.UUID) error
}

type DebtRepository interface {
	Create(ctx context.Context, q db.DBTX, d *debt.Debt) error
	FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*debt.Debt, error)
	Update(ctx context.Context, q db.DBTX, d *debt.Debt) error
	SaveClassification(ctx context.Context, q db.DBTX, d *debt.Debt) error
	FindUnclassified(ctx context.Context, q db.DBTX) ([]*debt.Debt, error)
}

type TokenRepository interface {
	Issue(ctx context.Context, q db.DBTX, t *token.Token) (*token.Token, error)
	FindByValue(ctx context.Context, q db.DBTX, value string) (*token.Token, error)
	Consume(ctx context.Context, q db.DBTX, value string, adminID uuid.UUID, now time.Time) error
}

type MaterialRepository interface {
	Create(ctx context.Context, q db.DBTX, row repository.MaterialRow) error
	FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*repository.MaterialRow, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, q db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

// StockLedger is the counter-store contract the write side depends on.
type StockLedger interface {
	TryDecrement(ctx context.Context, materialID uuid.UUID, amount int) (int64, error)
	Increment(ctx context.Context, materialID uuid.UUID, amount int) (int64, error)
	Set(ctx context.Context, materialID uuid.UUID, quantity int64) error
}
