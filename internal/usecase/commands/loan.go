package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lablend/internal/domain/loan"
	"lablend/internal/domain/token"
	reqdto "lablend/internal/handler/dto/request"
	"lablend/internal/infra"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/config"
	"lablend/internal/pkg/errs"
	"lablend/internal/pkg/scancode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrMaterialNotFound = errs.New("material not found")

type CreateLoanResult struct {
	LoanID            uuid.UUID
	ActivationScanURL string
	DueAt             time.Time
}

type LoanCommands interface {
	CreateLoan(ctx context.Context, studentID uuid.UUID, req reqdto.CreateLoanRequest) (*CreateLoanResult, error)
}

type loanUseCaseImpl struct {
	loanRepo     LoanRepository
	materialRepo MaterialRepository
	tokenRepo    TokenRepository
	db           DB
	clock        clock.Clock
	cfg          config.LendingConfig
}

func NewLoanUseCase(
	loanRepo LoanRepository,
	materialRepo MaterialRepository,
	tokenRepo TokenRepository,
	db DB,
	clock clock.Clock,
	cfg config.LendingConfig,
) LoanCommands {
	return &loanUseCaseImpl{
		loanRepo:     loanRepo,
		materialRepo: materialRepo,
		tokenRepo:    tokenRepo,
		db:           db,
		clock:        clock,
		cfg:          cfg,
	}
}

// CreateLoan registers a pending loan and its activation token. The unit
// price is snapshotted from the catalog here; later catalog edits never
// reprice an existing loan or the debt it may become. No stock is reserved
// until the activation scan.
func (u *loanUseCaseImpl) CreateLoan(ctx context.Context, studentID uuid.UUID, req reqdto.CreateLoanRequest) (*CreateLoanResult, error) {
	now := u.clock.Now()

	material, err := u.materialRepo.FindByID(ctx, u.db, req.MaterialID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	unitPrice, err := loan.NewMoney(material.UnitPriceCents)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	loanEntity, err := loan.NewLoan(studentID, req.MaterialID, req.Quantity, unitPrice, req.DueAt, now)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer rollback(ctx, tx)

	if err := u.loanRepo.Create(ctx, tx, loanEntity); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// the loan id doubles as the activation token value, so the printed loan
	// slip is scannable without a second lookup; activation never expires
	activation := token.NewToken(loanEntity.ID().String(), token.PurposeActivate, loanEntity.ID(), now, nil)
	if _, err := u.tokenRepo.Issue(ctx, tx, activation); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &CreateLoanResult{
		LoanID:            loanEntity.ID(),
		ActivationScanURL: scancode.Encode(u.cfg.ScanHost, token.PurposeActivate.Path(), activation.Value()),
		DueAt:             loanEntity.DueAt(),
	}, nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("failed to rollback transaction", "error", err)
	}
}
