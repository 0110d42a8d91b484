package commands

import (
	"context"
	"errors"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/token"
	reqdto "lablend/internal/handler/dto/request"
	"lablend/internal/infra"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/config"
	"lablend/internal/pkg/errs"
	"lablend/internal/pkg/scancode"

	"github.com/google/uuid"
)

var (
	ErrDebtNotFound          = errs.New("debt not found")
	ErrDebtAlreadyClassified = errs.New("debt already classified")
	ErrDebtSettled           = errs.New("debt already settled")
	ErrInvalidDebtKind       = errs.New("invalid debt kind")
	ErrInvalidPaymentChannel = errs.New("invalid payment channel")
	ErrNotDebtOwner          = errs.New("not the debt owner")
)

type ClassifyDebtResult struct {
	DebtID             uuid.UUID
	Kind               string
	AdjustedPriceCents int64
	// ReturnScanURL is set for late debts: the student brings the material
	// back and an admin scans this.
	ReturnScanURL *string
	// PayScanURL is set for broken/lost debts: payment of the adjusted price
	// settles the debt.
	PayScanURL *string
	// PaymentChannel echoes the recorded channel for payment-settled debts.
	PaymentChannel string
}

type DebtCommands interface {
	Classify(ctx context.Context, debtID uuid.UUID, actorID uuid.UUID, admin bool, req reqdto.ClassifyDebtRequest) (*ClassifyDebtResult, error)
}

type debtUseCaseImpl struct {
	debtRepo  DebtRepository
	tokenRepo TokenRepository
	db        DB
	clock     clock.Clock
	cfg       config.LendingConfig
}

func NewDebtUseCase(
	debtRepo DebtRepository,
	tokenRepo TokenRepository,
	db DB,
	clock clock.Clock,
	cfg config.LendingConfig,
) DebtCommands {
	return &debtUseCaseImpl{
		debtRepo:  debtRepo,
		tokenRepo: tokenRepo,
		db:        db,
		clock:     clock,
		cfg:       cfg,
	}
}

// Classify records the student's one-time answer about what happened to the
// material, reprices the debt by kind and issues the matching resolution
// token. The answer cannot be revised afterwards.
func (u *debtUseCaseImpl) Classify(ctx context.Context, debtID uuid.UUID, actorID uuid.UUID, admin bool, req reqdto.ClassifyDebtRequest) (*ClassifyDebtResult, error) {
	kind, err := debt.ParseKind(req.Kind)
	if err != nil {
		return nil, ErrInvalidDebtKind
	}

	debtEntity, err := u.debtRepo.FindByID(ctx, u.db, debtID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !admin && debtEntity.StudentID() != actorID {
		return nil, ErrNotDebtOwner
	}

	if req.PaymentChannel != "" {
		// state errors surface from Classify just below
		if err := debtEntity.ChoosePaymentChannel(req.PaymentChannel); errors.Is(err, debt.ErrInvalidChannel) {
			return nil, ErrInvalidPaymentChannel
		}
	}

	if err := debtEntity.Classify(kind, u.multipliers()); err != nil {
		switch {
		case errors.Is(err, debt.ErrAlreadyClassified):
			return nil, ErrDebtAlreadyClassified
		case errors.Is(err, debt.ErrNotPending):
			return nil, ErrDebtSettled
		default:
			return nil, errs.Mark(err, ErrDomainValidation)
		}
	}

	now := u.clock.Now()
	purpose := token.PurposePayDebt
	if debtEntity.ResolvableByReturn() {
		purpose = token.PurposeReturnDebt
	}
	resolution := token.NewToken(scancode.NewValue(), purpose, debtEntity.ID(), now, nil)

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer rollback(ctx, tx)

	// Issue hands back the already-live token if an earlier classify attempt
	// committed the token but lost the debt update
	issued, err := u.tokenRepo.Issue(ctx, tx, resolution)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if purpose == token.PurposeReturnDebt {
		debtEntity.AttachReturnToken(issued.Value())
	} else {
		debtEntity.AttachPayToken(issued.Value())
	}

	// a concurrent answer wins the conditional update; its kind and price
	// stand, and this attempt's token rolls back with the transaction
	if err := u.debtRepo.SaveClassification(ctx, tx, debtEntity); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrDebtAlreadyClassified
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	result := &ClassifyDebtResult{
		DebtID:             debtEntity.ID(),
		Kind:               string(debtEntity.Kind()),
		AdjustedPriceCents: debtEntity.AdjustedPrice().Cents(),
	}
	url := scancode.Encode(u.cfg.ScanHost, purpose.Path(), issued.Value())
	if purpose == token.PurposeReturnDebt {
		result.ReturnScanURL = &url
	} else {
		result.PayScanURL = &url
		result.PaymentChannel = debtEntity.PaymentChannel()
	}
	return result, nil
}

func (u *debtUseCaseImpl) multipliers() debt.Multipliers {
	return debt.Multipliers{
		Late:   u.cfg.LateMultiplier,
		Broken: u.cfg.BrokenMultiplier,
		Lost:   u.cfg.LostMultiplier,
	}
}
