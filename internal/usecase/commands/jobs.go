package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"
	"lablend/internal/domain/token"
	"lablend/internal/infra"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/config"
	"lablend/internal/pkg/errs"
	"lablend/internal/pkg/scancode"
)

type StepReport struct {
	Name      string   `json:"name"`
	Processed int      `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}

type RunReport struct {
	RanAt time.Time    `json:"ran_at"`
	Cycle int          `json:"cycle"`
	Steps []StepReport `json:"steps"`
}

func (r *RunReport) Failed() bool {
	for _, step := range r.Steps {
		if len(step.Errors) > 0 {
			return true
		}
	}
	return false
}

type JobCommands interface {
	// Run executes one maintenance pass. The trigger lives outside the
	// process; cycle is the caller's monotonically increasing run counter
	// and only gates the low-frequency prompt step.
	Run(ctx context.Context, cycle int) (*RunReport, error)
}

type jobUseCaseImpl struct {
	loanRepo         LoanRepository
	debtRepo         DebtRepository
	tokenRepo        TokenRepository
	notificationRepo NotificationRepository
	db               DB
	clock            clock.Clock
	cfg              config.LendingConfig
}

func NewJobUseCase(
	loanRepo LoanRepository,
	debtRepo DebtRepository,
	tokenRepo TokenRepository,
	notificationRepo NotificationRepository,
	db DB,
	clock clock.Clock,
	cfg config.LendingConfig,
) JobCommands {
	return &jobUseCaseImpl{
		loanRepo:         loanRepo,
		debtRepo:         debtRepo,
		tokenRepo:        tokenRepo,
		notificationRepo: notificationRepo,
		db:               db,
		clock:            clock,
		cfg:              cfg,
	}
}

// Run executes the sweeps in a fixed order: expirations first so freshly
// expired loans are visible to conversion on a later run, never this one.
// Steps are isolated; one failing record is reported and skipped.
func (j *jobUseCaseImpl) Run(ctx context.Context, cycle int) (*RunReport, error) {
	now := j.clock.Now()
	report := &RunReport{RanAt: now, Cycle: cycle}

	report.Steps = append(report.Steps, j.expireStep(ctx, now))
	report.Steps = append(report.Steps, j.returnTokenStep(ctx, now))
	report.Steps = append(report.Steps, j.conversionStep(ctx, now))
	if j.cfg.PromptCycleInterval > 0 && cycle%j.cfg.PromptCycleInterval == 0 {
		report.Steps = append(report.Steps, j.promptStep(ctx, now))
	}

	return report, nil
}

// retryTransient runs fn, retrying once when the failure is a plain database
// fault. Domain outcomes (not found, conflicts) never retry.
func retryTransient(fn func() error) error {
	err := fn()
	if err != nil && infra.IsKind(err, infra.KindDBFailure) {
		err = fn()
	}
	return err
}

func (j *jobUseCaseImpl) expireStep(ctx context.Context, now time.Time) StepReport {
	step := StepReport{Name: "expire_due_loans"}

	var count int64
	err := retryTransient(func() error {
		var err error
		count, err = j.loanRepo.ExpireDue(ctx, j.db, now)
		return err
	})
	if err != nil {
		step.Errors = append(step.Errors, err.Error())
		return step
	}
	step.Processed = int(count)
	return step
}

func (j *jobUseCaseImpl) returnTokenStep(ctx context.Context, now time.Time) StepReport {
	step := StepReport{Name: "issue_return_tokens"}

	loans, err := j.loanRepo.FindDueWithout(ctx, j.db, now.Add(j.cfg.ReturnLookahead))
	if err != nil {
		step.Errors = append(step.Errors, err.Error())
		return step
	}

	for _, loanEntity := range loans {
		err := retryTransient(func() error {
			return j.issueReturnToken(ctx, loanEntity, now)
		})
		if err != nil {
			step.Errors = append(step.Errors, fmt.Sprintf("loan %s: %v", loanEntity.ID(), err))
			continue
		}
		step.Processed++
	}
	return step
}

func (j *jobUseCaseImpl) issueReturnToken(ctx context.Context, loanEntity *loan.Loan, now time.Time) error {
	validUntil := loanEntity.DueAt().Add(j.cfg.ReturnTokenSlack)
	fresh := token.NewToken(scancode.NewValue(), token.PurposeReturnLoan, loanEntity.ID(), now, &validUntil)

	tx, err := j.db.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer rollback(ctx, tx)

	issued, err := j.tokenRepo.Issue(ctx, tx, fresh)
	if err != nil {
		return err
	}

	alreadyAttached := false
	if err := j.loanRepo.SetReturnToken(ctx, tx, loanEntity.ID(), issued.Value()); err != nil {
		// an overlapping run attached it already; nothing new to notify
		if !infra.IsKind(err, infra.KindConflict) {
			return err
		}
		alreadyAttached = true
	}

	if !alreadyAttached {
		payload, err := json.Marshal(map[string]any{
			"loan_id":    loanEntity.ID(),
			"student_id": loanEntity.StudentID(),
			"due_at":     loanEntity.DueAt(),
			"scan_url":   scancode.Encode(j.cfg.ScanHost, token.PurposeReturnLoan.Path(), issued.Value()),
		})
		if err != nil {
			return err
		}
		if err := j.notificationRepo.CreateJob(ctx, tx, "email", "loan_return_prompt", payload, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (j *jobUseCaseImpl) conversionStep(ctx context.Context, now time.Time) StepReport {
	step := StepReport{Name: "convert_expired_loans"}

	loans, err := j.loanRepo.FindConvertible(ctx, j.db, now.Add(-j.cfg.GraceWindow))
	if err != nil {
		step.Errors = append(step.Errors, err.Error())
		return step
	}

	for _, loanEntity := range loans {
		err := retryTransient(func() error {
			return j.convertLoan(ctx, loanEntity, now)
		})
		if err != nil {
			step.Errors = append(step.Errors, fmt.Sprintf("loan %s: %v", loanEntity.ID(), err))
			continue
		}
		step.Processed++
	}
	return step
}

// convertLoan replaces one expired loan with a pending debt, atomically.
// The provisional kind is late; the student's classification answer comes
// later. A duplicate debt means a previous run already converted and only
// the loan cleanup is left.
func (j *jobUseCaseImpl) convertLoan(ctx context.Context, loanEntity *loan.Loan, now time.Time) error {
	debtEntity, err := debt.NewFromLoan(loanEntity, j.multipliers(), now)
	if err != nil {
		return errs.Mark(err, ErrDomainValidation)
	}

	tx, err := j.db.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer rollback(ctx, tx)

	alreadyConverted := false
	if err := j.debtRepo.Create(ctx, tx, debtEntity); err != nil {
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return err
		}
		alreadyConverted = true
	}

	if err := j.loanRepo.Delete(ctx, tx, loanEntity.ID()); err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			return err
		}
	}

	if !alreadyConverted {
		payload, err := json.Marshal(map[string]any{
			"debt_id":              debtEntity.ID(),
			"origin_loan_id":       loanEntity.ID(),
			"student_id":           debtEntity.StudentID(),
			"adjusted_price_cents": debtEntity.AdjustedPrice().Cents(),
		})
		if err != nil {
			return err
		}
		if err := j.notificationRepo.CreateJob(ctx, tx, "email", "debt_created", payload, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// promptStep nudges students who still have not said what happened to the
// material. It runs on every PromptCycleInterval-th cycle only.
func (j *jobUseCaseImpl) promptStep(ctx context.Context, now time.Time) StepReport {
	step := StepReport{Name: "prompt_unclassified_debts"}

	debts, err := j.debtRepo.FindUnclassified(ctx, j.db)
	if err != nil {
		step.Errors = append(step.Errors, err.Error())
		return step
	}

	for _, debtEntity := range debts {
		payload, err := json.Marshal(map[string]any{
			"debt_id":    debtEntity.ID(),
			"student_id": debtEntity.StudentID(),
			"kinds":      []string{string(debt.KindLate), string(debt.KindBroken), string(debt.KindLost)},
		})
		if err != nil {
			step.Errors = append(step.Errors, fmt.Sprintf("debt %s: %v", debtEntity.ID(), err))
			continue
		}
		err = retryTransient(func() error {
			return j.notificationRepo.CreateJob(ctx, j.db, "email", "debt_classification_prompt", payload, now)
		})
		if err != nil {
			step.Errors = append(step.Errors, fmt.Sprintf("debt %s: %v", debtEntity.ID(), err))
			continue
		}
		step.Processed++
	}
	return step
}

func (j *jobUseCaseImpl) multipliers() debt.Multipliers {
	return debt.Multipliers{
		Late:   j.cfg.LateMultiplier,
		Broken: j.cfg.BrokenMultiplier,
		Lost:   j.cfg.LostMultiplier,
	}
}
