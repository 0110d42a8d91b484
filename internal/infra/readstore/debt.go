package readstore

import (
	"context"

	"lablend/internal/domain/token"
	"lablend/internal/infra"
	"lablend/internal/infra/db"
	"lablend/internal/pkg/scancode"
	"lablend/internal/usecase/queries"

	"github.com/google/uuid"
)

type DebtReadStore struct {
	db       db.DBTX
	scanHost string
}

func NewDebtReadStore(db db.DBTX, scanHost string) *DebtReadStore {
	return &DebtReadStore{db: db, scanHost: scanHost}
}

const debtViewColumns = `d.id, d.origin_loan_id, d.student_id, d.material_id, m.name,
	d.quantity, d.unit_price_cents, d.adjusted_price_cents, d.kind, d.classified,
	d.status, d.return_token, d.pay_token, d.created_at, d.due_at, d.settled_via`

func (s *DebtReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.DebtView, error) {
	query := `
		SELECT ` + debtViewColumns + `
		FROM debts d
		JOIN materials m ON m.id = d.material_id
		WHERE d.id = $1
	`
	view, err := s.scanDebtView(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("debt not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find debt view", err)
	}
	return view, nil
}

func (s *DebtReadStore) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*queries.DebtView, error) {
	query := `
		SELECT ` + debtViewColumns + `
		FROM debts d
		JOIN materials m ON m.id = d.material_id
		WHERE d.student_id = $1
		ORDER BY d.created_at
	`
	rows, err := s.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query debt views", err)
	}
	defer rows.Close()

	var result []*queries.DebtView
	for rows.Next() {
		view, err := s.scanDebtView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan debt view", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate debt views", err)
	}
	return result, nil
}

func (s *DebtReadStore) scanDebtView(row interface{ Scan(dest ...any) error }) (*queries.DebtView, error) {
	var (
		view        queries.DebtView
		returnToken *string
		payToken    *string
	)
	err := row.Scan(&view.ID, &view.OriginLoanID, &view.StudentID, &view.MaterialID,
		&view.MaterialName, &view.Quantity, &view.UnitPriceCents, &view.AdjustedPriceCents,
		&view.Kind, &view.Classified, &view.Status, &returnToken, &payToken,
		&view.CreatedAt, &view.DueAt, &view.SettledVia)
	if err != nil {
		return nil, err
	}
	if returnToken != nil {
		url := scancode.Encode(s.scanHost, token.PurposeReturnDebt.Path(), *returnToken)
		view.ReturnScanURL = &url
	}
	if payToken != nil {
		url := scancode.Encode(s.scanHost, token.PurposePayDebt.Path(), *payToken)
		view.PayScanURL = &url
	}
	return &view, nil
}
