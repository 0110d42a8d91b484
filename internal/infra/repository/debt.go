package repository

import (
	"context"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"
	"lablend/internal/infra"
	"lablend/internal/infra/db"

	"github.com/google/uuid"
)

type DebtRepository struct{}

func NewDebtRepository() *DebtRepository {
	return &DebtRepository{}
}

const debtColumns = `id, origin_loan_id, student_id, material_id, quantity, unit_price_cents,
	adjusted_price_cents, kind, classified, status, return_token, pay_token, created_at, due_at,
	settled_via, payment_channel`

func scanDebt(row interface{ Scan(dest ...any) error }) (*debt.Debt, error) {
	var (
		id, originLoanID, studentID, materialID uuid.UUID
		quantity                                int
		unitCents, adjustedCents                int64
		kind, status, paymentChannel            string
		classified                              bool
		returnToken, payToken, settledVia       *string
		createdAt, dueAt                        time.Time
	)
	err := row.Scan(&id, &originLoanID, &studentID, &materialID, &quantity, &unitCents,
		&adjustedCents, &kind, &classified, &status, &returnToken, &payToken, &createdAt, &dueAt,
		&settledVia, &paymentChannel)
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

	return debt.ReconstructDebt(
		id, originLoanID, studentID, materialID, quantity, unit, adjusted,
		debt.Kind(kind), classified, debt.Status(status),
		returnToken, payToken, createdAt, dueAt, settledVia, paymentChannel,
	), nil
}

func (r *DebtRepository) Create(ctx context.Context, q db.DBTX, d *debt.Debt) error {
	query := `
		INSERT INTO debts (id, origin_loan_id, student_id, material_id, quantity,
			unit_price_cents, adjusted_price_cents, kind, classified, status,
			return_token, pay_token, created_at, due_at, settled_via, payment_channel)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := q.Exec(ctx, query,
		d.ID(), d.OriginLoanID(), d.StudentID(), d.MaterialID(), d.Quantity(),
		d.UnitPrice().Cents(), d.AdjustedPrice().Cents(),
		d.Kind(), d.Classified(), d.Status().String(),
		d.ReturnToken(), d.PayToken(), d.CreatedAt(), d.DueAt(), d.SettledVia(), d.PaymentChannel(),
	)
	if err != nil {
		// origin_loan_id is unique: a second conversion of the same loan
		// surfaces here instead of duplicating the obligation
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("debt already exists for loan", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create debt", err)
	}
	return nil
}

func (r *DebtRepository) FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*debt.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1`
	d, err := scanDebt(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("debt not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find debt", err)
	}
	return d, nil
}

// Update persists settlement and token state. Identity and price-origin
// columns never change after creation; classification goes through
// SaveClassification so concurrent answers cannot overwrite each other.
func (r *DebtRepository) Update(ctx context.Context, q db.DBTX, d *debt.Debt) error {
	query := `
		UPDATE debts
		SET adjusted_price_cents = $2, kind = $3, classified = $4, status = $5,
			return_token = $6, pay_token = $7, settled_via = $8
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		d.ID(), d.AdjustedPrice().Cents(), d.Kind(), d.Classified(),
		d.Status().String(), d.ReturnToken(), d.PayToken(), d.SettledVia(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update debt", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("debt not found", nil, infra.KindNotFound)
	}
	return nil
}

// SaveClassification persists the one-time classification answer. The row
// predicate is the arbiter under concurrency: once any answer lands, later
// writers match zero rows and the first answer stands.
func (r *DebtRepository) SaveClassification(ctx context.Context, q db.DBTX, d *debt.Debt) error {
	query := `
		UPDATE debts
		SET adjusted_price_cents = $2, kind = $3, classified = TRUE,
			return_token = $4, pay_token = $5, payment_channel = $6
		WHERE id = $1 AND NOT classified AND status = 'pending'
	`
	tag, err := q.Exec(ctx, query,
		d.ID(), d.AdjustedPrice().Cents(), d.Kind(), d.ReturnToken(), d.PayToken(), d.PaymentChannel(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save debt classification", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("debt already classified or settled", nil, infra.KindConflict)
	}
	return nil
}

// FindUnclassified returns pending debts still awaiting the student's
// follow-up answer, for the prompt sweep.
func (r *DebtRepository) FindUnclassified(ctx context.Context, q db.DBTX) ([]*debt.Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE status = 'pending' AND NOT classified
		ORDER BY created_at
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query unclassified debts", err)
	}
	defer rows.Close()

	var result []*debt.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan debt", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate debts", err)
	}
	return result, nil
}
