package repository

import (
	"context"
	"time"

	"lablend/internal/domain/loan"
	"lablend/internal/infra"
	"lablend/internal/infra/db"

	"github.com/google/uuid"
)

type LoanRepository struct{}

func NewLoanRepository() *LoanRepository {
	return &LoanRepository{}
}

const loanColumns = `id, student_id, material_id, quantity, unit_price_cents, adjusted_price_cents,
	status, requested_at, started_at, due_at, return_token`

func scanLoan(row interface{ Scan(dest ...any) error }) (*loan.Loan, error) {
	var (
		id, studentID, materialID uuid.UUID
		quantity                  int
		unitCents, adjustedCents  int64
		status                    string
		requestedAt, dueAt        time.Time
		startedAt                 *time.Time
		returnToken               *string
	)
	err := row.Scan(&id, &studentID, &materialID, &quantity, &unitCents, &adjustedCents,
		&status, &requestedAt, &startedAt, &dueAt, &returnToken)
	if err != nil {
		return nil, err
	}

	unit, err := loan.NewMoney(unitCents)
	if err != nil {
		return nil, err
	}
	adjusted, err := loan.NewMoney(adjustedCents)
	if err != nil {
		return nil, err
	}

	return loan.ReconstructLoan(
		id, studentID, materialID, quantity, unit, adjusted,
		loan.Status(status), requestedAt, startedAt, dueAt, returnToken,
	), nil
}

func (r *LoanRepository) Create(ctx context.Context, q db.DBTX, l *loan.Loan) error {
	query := `
		INSERT INTO loans (id, student_id, material_id, quantity, unit_price_cents,
			adjusted_price_cents, status, requested_at, started_at, due_at, return_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.Exec(ctx, query,
		l.ID(), l.StudentID(), l.MaterialID(), l.Quantity(),
		l.UnitPrice().Cents(), l.AdjustedPrice().Cents(),
		l.Status().String(), l.RequestedAt(), l.StartedAt(), l.DueAt(), l.ReturnToken(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("loan already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create loan", err)
	}
	return nil
}

func (r *LoanRepository) FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	l, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("loan not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find loan", err)
	}
	return l, nil
}

// MarkActivated persists the pending -> active transition. The status guard
// makes concurrent activations lose cleanly: zero rows means another writer
// got there first.
func (r *LoanRepository) MarkActivated(ctx context.Context, q db.DBTX, id uuid.UUID, startedAt time.Time) error {
	query := `
		UPDATE loans
		SET status = 'active', started_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := q.Exec(ctx, query, id, startedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to activate loan", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("loan is not pending", nil, infra.KindConflict)
	}
	return nil
}

// ExpireDue flips every active loan past its due date to expired in one
// conditional statement; re-running is a no-op.
func (r *LoanRepository) ExpireDue(ctx context.Context, q db.DBTX, now time.Time) (int64, error) {
	query := `
		UPDATE loans
		SET status = 'expired'
		WHERE status = 'active' AND due_at < $1
	`
	tag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire due loans", err)
	}
	return tag.RowsAffected(), nil
}

// FindDueWithout returns active loans due before the horizon that have no
// return token attached yet.
func (r *LoanRepository) FindDueWithout(ctx context.Context, q db.DBTX, horizon time.Time) ([]*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = 'active' AND due_at < $1 AND return_token IS NULL
		ORDER BY due_at
	`
	return r.queryLoans(ctx, q, query, horizon)
}

// FindConvertible returns expired loans whose due date lies before the
// grace cutoff.
func (r *LoanRepository) FindConvertible(ctx context.Context, q db.DBTX, cutoff time.Time) ([]*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = 'expired' AND due_at < $1
		ORDER BY due_at
	`
	return r.queryLoans(ctx, q, query, cutoff)
}

func (r *LoanRepository) queryLoans(ctx context.Context, q db.DBTX, query string, args ...any) ([]*loan.Loan, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query loans", err)
	}
	defer rows.Close()

	var result []*loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan loan", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate loans", err)
	}
	return result, nil
}

// SetReturnToken attaches a return token once; the NULL guard keeps
// overlapping sweep runs from overwriting an issued token.
func (r *LoanRepository) SetReturnToken(ctx context.Context, q db.DBTX, id uuid.UUID, value string) error {
	query := `
		UPDATE loans
		SET return_token = $2
		WHERE id = $1 AND return_token IS NULL
	`
	tag, err := q.Exec(ctx, query, id, value)
	if err != nil {
		return infra.WrapRepoErr("failed to set return token", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("return token already set", nil, infra.KindConflict)
	}
	return nil
}

func (r *LoanRepository) Delete(ctx context.Context, q db.DBTX, id uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete loan", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	return nil
}
