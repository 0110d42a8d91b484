// Package readstore serves the query side with denormalized views joined
// straight from the document store. Write-side repositories never return
// these shapes.
package readstore

import (
	"context"
	"time"

	"lablend/internal/domain/token"
	"lablend/internal/infra"
	"lablend/internal/infra/db"
	"lablend/internal/pkg/scancode"
	"lablend/internal/usecase/queries"

	"github.com/google/uuid"
)

type LoanReadStore struct {
	db       db.DBTX
	scanHost string
}

func NewLoanReadStore(db db.DBTX, scanHost string) *LoanReadStore {
	return &LoanReadStore{db: db, scanHost: scanHost}
}

const loanViewColumns = `l.id, l.student_id, l.material_id, m.name, l.quantity,
	l.unit_price_cents, l.adjusted_price_cents, l.status, l.requested_at,
	l.started_at, l.due_at, l.return_token`

func (s *LoanReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.LoanView, error) {
	query := `
		SELECT ` + loanViewColumns + `
		FROM loans l
		JOIN materials m ON m.id = l.material_id
		WHERE l.id = $1
	`
	view, err := s.scanLoanView(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("loan not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find loan view", err)
	}
	return view, nil
}

func (s *LoanReadStore) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*queries.LoanView, error) {
	query := `
		SELECT ` + loanViewColumns + `
		FROM loans l
		JOIN materials m ON m.id = l.material_id
		WHERE l.student_id = $1
		ORDER BY l.due_at
	`
	rows, err := s.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query loan views", err)
	}
	defer rows.Close()

	var result []*queries.LoanView
	for rows.Next() {
		view, err := s.scanLoanView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan loan view", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate loan views", err)
	}
	return result, nil
}

func (s *LoanReadStore) scanLoanView(row interface{ Scan(dest ...any) error }) (*queries.LoanView, error) {
	var (
		view        queries.LoanView
		startedAt   *time.Time
		returnToken *string
	)
	err := row.Scan(&view.ID, &view.StudentID, &view.MaterialID, &view.MaterialName,
		&view.Quantity, &view.UnitPriceCents, &view.AdjustedPriceCents, &view.Status,
		&view.RequestedAt, &startedAt, &view.DueAt, &returnToken)
	if err != nil {
		return nil, err
	}
	view.StartedAt = startedAt
	if returnToken != nil {
		url := scancode.Encode(s.scanHost, token.PurposeReturnLoan.Path(), *returnToken)
		view.ReturnScanURL = &url
	}
	return &view, nil
}
