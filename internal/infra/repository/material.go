package repository

import (
	"context"
	"time"

	"lablend/internal/infra"
	"lablend/internal/infra/db"

	"github.com/google/uuid"
)

// MaterialRow is the catalog entry for one material. Availability is not
// here; the stock ledger owns it.
type MaterialRow struct {
	ID             uuid.UUID
	Name           string
	UnitPriceCents int64
	CreatedAt      time.Time
}

type MaterialRepository struct{}

func NewMaterialRepository() *MaterialRepository {
	return &MaterialRepository{}
}

func (r *MaterialRepository) Create(ctx context.Context, q db.DBTX, row MaterialRow) error {
	query := `
		INSERT INTO materials (id, name, unit_price_cents, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.Exec(ctx, query, row.ID, row.Name, row.UnitPriceCents, row.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("material name already registered", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create material", err)
	}
	return nil
}

func (r *MaterialRepository) FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*MaterialRow, error) {
	query := `
		SELECT id, name, unit_price_cents, created_at
		FROM materials
		WHERE id = $1
	`
	var row MaterialRow
	err := q.QueryRow(ctx, query, id).Scan(&row.ID, &row.Name, &row.UnitPriceCents, &row.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("material not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find material", err)
	}
	return &row, nil
}
