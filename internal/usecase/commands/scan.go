package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"
	"lablend/internal/domain/token"
	"lablend/internal/infra"
	"lablend/internal/infra/stockledger"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/errs"
	"lablend/internal/pkg/scancode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrTokenNotFound      = errs.New("token not found")
	ErrTokenConsumed      = errs.New("token already consumed")
	ErrTokenExpired       = errs.New("token expired")
	ErrInsufficientStock  = errs.New("insufficient stock")
	ErrRecordNotFound     = errs.New("record behind token not found")
	ErrTransitionConflict = errs.New("conflicting transition in progress")
	ErrWrongResolution    = errs.New("resolution not allowed for this debt")
)

const (
	compensationAttempts  = 3
	compensationBaseDelay = 50 * time.Millisecond
)

type ScanOutcome string

const (
	OutcomeLoanActivated ScanOutcome = "loan_activated"
	OutcomeLoanReturned  ScanOutcome = "loan_returned"
	OutcomeDebtReturned  ScanOutcome = "debt_returned"
	OutcomeDebtPaid      ScanOutcome = "debt_paid"
)

type ScanResult struct {
	Outcome     ScanOutcome
	StudentID   uuid.UUID
	MaterialID  uuid.UUID
	Quantity    int
	LoanID      *uuid.UUID
	DebtID      *uuid.UUID
	AmountCents *int64
}

type ScanCommands interface {
	// Scan validates a scanned value and executes the transition its token
	// authorizes. Exactly one transition happens per token, ever.
	Scan(ctx context.Context, rawValue string, adminID uuid.UUID) (*ScanResult, error)
}

type scanUseCaseImpl struct {
	loanRepo  LoanRepository
	debtRepo  DebtRepository
	tokenRepo TokenRepository
	ledger    StockLedger
	db        DB
	clock     clock.Clock
}

func NewScanUseCase(
	loanRepo LoanRepository,
	debtRepo DebtRepository,
	tokenRepo TokenRepository,
	ledger StockLedger,
	db DB,
	clock clock.Clock,
) ScanCommands {
	return &scanUseCaseImpl{
		loanRepo:  loanRepo,
		debtRepo:  debtRepo,
		tokenRepo: tokenRepo,
		ledger:    ledger,
		db:        db,
		clock:     clock,
	}
}

func (s *scanUseCaseImpl) Scan(ctx context.Context, rawValue string, adminID uuid.UUID) (*ScanResult, error) {
	value, err := scancode.Extract(rawValue)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenNotFound)
	}

	tok, err := s.tokenRepo.FindByValue(ctx, s.db, value)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	now := s.clock.Now()
	if err := tok.Usable(now); err != nil {
		switch {
		case errors.Is(err, token.ErrAlreadyConsumed):
			return nil, ErrTokenConsumed
		case errors.Is(err, token.ErrExpired):
			return nil, ErrTokenExpired
		default:
			return nil, errs.Mark(err, ErrDomainValidation)
		}
	}

	switch tok.Purpose() {
	case token.PurposeActivate:
		return s.activateLoan(ctx, tok, adminID, now)
	case token.PurposeReturnLoan:
		return s.returnLoan(ctx, tok, adminID, now)
	case token.PurposeReturnDebt:
		return s.returnDebt(ctx, tok, adminID, now)
	case token.PurposePayDebt:
		return s.payDebt(ctx, tok, adminID, now)
	default:
		return nil, ErrTokenNotFound
	}
}

// activateLoan hands the material out. The stock counter is decremented
// before the document flips: availability is the scarce resource, so it must
// be reserved first and refunded if the document write loses. The refund
// only applies when the loan verifiably never reached active.
func (s *scanUseCaseImpl) activateLoan(ctx context.Context, tok *token.Token, adminID uuid.UUID, now time.Time) (*ScanResult, error) {
	loanEntity, err := s.loanRepo.FindByID(ctx, s.db, tok.OwnerRecordID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if loanEntity.Status() != loan.StatusPending {
		return nil, ErrTransitionConflict
	}

	if _, err := s.ledger.TryDecrement(ctx, loanEntity.MaterialID(), loanEntity.Quantity()); err != nil {
		if errors.Is(err, stockledger.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	result, err := s.commitActivation(ctx, tok, loanEntity, adminID, now)
	if err != nil {
		// A conflict surfaces before this attempt's commit, so the
		// transaction rolled back and the reserved units are ours to hand
		// straight back. If a concurrent scan won the token, the loan is
		// active through the winner's own decrement, not this one; the
		// loan-state guard in compensateActivation would wrongly keep the
		// reservation. Only an ambiguous commit outcome needs that guard.
		if errors.Is(err, ErrTokenConsumed) || errors.Is(err, ErrTransitionConflict) {
			s.refundStock(ctx, loanEntity.MaterialID(), loanEntity.Quantity())
		} else {
			s.compensateActivation(loanEntity.ID(), loanEntity.MaterialID(), loanEntity.Quantity())
		}
		return nil, err
	}
	return result, nil
}

func (s *scanUseCaseImpl) commitActivation(ctx context.Context, tok *token.Token, loanEntity *loan.Loan, adminID uuid.UUID, now time.Time) (*ScanResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer rollback(ctx, tx)

	if err := s.tokenRepo.Consume(ctx, tx, tok.Value(), adminID, now); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrTokenConsumed
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := s.loanRepo.MarkActivated(ctx, tx, loanEntity.ID(), now); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrTransitionConflict
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	loanID := loanEntity.ID()
	return &ScanResult{
		Outcome:    OutcomeLoanActivated,
		StudentID:  loanEntity.StudentID(),
		MaterialID: loanEntity.MaterialID(),
		Quantity:   loanEntity.Quantity(),
		LoanID:     &loanID,
	}, nil
}

// compensateActivation returns reserved stock after an activation commit
// whose outcome is unknown. It re-reads the loan first: if this activation
// actually landed the decrement was earned and must stand. Callers that know
// their transaction rolled back refund directly instead.
func (s *scanUseCaseImpl) compensateActivation(loanID, materialID uuid.UUID, quantity int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	delay := compensationBaseDelay
	for attempt := 0; attempt < compensationAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				slog.Error("stock compensation abandoned",
					"loan_id", loanID, "material_id", materialID, "quantity", quantity)
				return
			case <-time.After(delay):
				delay *= 2
			}
		}

		loanEntity, err := s.loanRepo.FindByID(ctx, s.db, loanID)
		if err != nil {
			continue
		}
		if loanEntity.Status() != loan.StatusPending {
			return
		}
		if _, err := s.ledger.Increment(ctx, materialID, quantity); err == nil {
			return
		}
	}
	slog.Error("stock compensation exhausted retries",
		"loan_id", loanID, "material_id", materialID, "quantity", quantity)
}

// returnLoan closes out an on-time return: the loan record is deleted and
// the material goes back on the shelf.
func (s *scanUseCaseImpl) returnLoan(ctx context.Context, tok *token.Token, adminID uuid.UUID, now time.Time) (*ScanResult, error) {
	loanEntity, err := s.loanRepo.FindByID(ctx, s.db, tok.OwnerRecordID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.tokenRepo.Consume(ctx, tx, tok.Value(), adminID, now); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrTokenConsumed
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := s.loanRepo.Delete(ctx, tx, loanEntity.ID()); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrTransitionConflict
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refundStock(ctx, loanEntity.MaterialID(), loanEntity.Quantity())

	loanID := loanEntity.ID()
	return &ScanResult{
		Outcome:    OutcomeLoanReturned,
		StudentID:  loanEntity.StudentID(),
		MaterialID: loanEntity.MaterialID(),
		Quantity:   loanEntity.Quantity(),
		LoanID:     &loanID,
	}, nil
}

func (s *scanUseCaseImpl) returnDebt(ctx context.Context, tok *token.Token, adminID uuid.UUID, now time.Time) (*ScanResult, error) {
	debtEntity, err := s.findDebt(ctx, tok.OwnerRecordID())
	if err != nil {
		return nil, err
	}
	if err := debtEntity.MarkReturned(); err != nil {
		return nil, mapDebtResolutionErr(err)
	}

	if err := s.settleDebt(ctx, tok, debtEntity, adminID, now); err != nil {
		return nil, err
	}

	s.refundStock(ctx, debtEntity.MaterialID(), debtEntity.Quantity())

	debtID := debtEntity.ID()
	return &ScanResult{
		Outcome:    OutcomeDebtReturned,
		StudentID:  debtEntity.StudentID(),
		MaterialID: debtEntity.MaterialID(),
		Quantity:   debtEntity.Quantity(),
		DebtID:     &debtID,
	}, nil
}

func (s *scanUseCaseImpl) payDebt(ctx context.Context, tok *token.Token, adminID uuid.UUID, now time.Time) (*ScanResult, error) {
	debtEntity, err := s.findDebt(ctx, tok.OwnerRecordID())
	if err != nil {
		return nil, err
	}
	// settle through the channel the student picked when classifying
	if err := debtEntity.MarkPaid(debtEntity.PaymentChannel()); err != nil {
		return nil, mapDebtResolutionErr(err)
	}

	if err := s.settleDebt(ctx, tok, debtEntity, adminID, now); err != nil {
		return nil, err
	}

	// paid debts keep the material with the student; no stock movement
	amount := debtEntity.AdjustedPrice().Cents()
	debtID := debtEntity.ID()
	return &ScanResult{
		Outcome:     OutcomeDebtPaid,
		StudentID:   debtEntity.StudentID(),
		MaterialID:  debtEntity.MaterialID(),
		Quantity:    debtEntity.Quantity(),
		DebtID:      &debtID,
		AmountCents: &amount,
	}, nil
}

func (s *scanUseCaseImpl) findDebt(ctx context.Context, id uuid.UUID) (*debt.Debt, error) {
	debtEntity, err := s.debtRepo.FindByID(ctx, s.db, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return debtEntity, nil
}

func (s *scanUseCaseImpl) settleDebt(ctx context.Context, tok *token.Token, debtEntity *debt.Debt, adminID uuid.UUID, now time.Time) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.tokenRepo.Consume(ctx, tx, tok.Value(), adminID, now); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrTokenConsumed
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := s.debtRepo.Update(ctx, tx, debtEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (s *scanUseCaseImpl) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer rollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

// refundStock puts quantity back on the counter after a committed document
// transition. The document side already committed, so the refund is retried
// rather than rolled back; an exhausted retry is an admin-visible drift.
func (s *scanUseCaseImpl) refundStock(ctx context.Context, materialID uuid.UUID, quantity int) {
	var err error
	for attempt := 0; attempt < compensationAttempts; attempt++ {
		if _, err = s.ledger.Increment(ctx, materialID, quantity); err == nil {
			return
		}
	}
	slog.Error("stock refund failed", "material_id", materialID, "quantity", quantity, "error", err)
}

func mapDebtResolutionErr(err error) error {
	switch {
	case errors.Is(err, debt.ErrWrongResolution):
		return ErrWrongResolution
	case errors.Is(err, debt.ErrNotPending):
		return ErrTransitionConflict
	default:
		return errs.Mark(err, ErrDomainValidation)
	}
}
