package readstore

import (
	"context"

	"lablend/internal/infra"
	"lablend/internal/infra/db"
	"lablend/internal/usecase/queries"

	"github.com/google/uuid"
)

type MaterialReadStore struct {
	db db.DBTX
}

func NewMaterialReadStore(db db.DBTX) *MaterialReadStore {
	return &MaterialReadStore{db: db}
}

func (s *MaterialReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.MaterialView, error) {
	query := `
		SELECT id, name, unit_price_cents, created_at
		FROM materials
		WHERE id = $1
	`
	var view queries.MaterialView
	err := s.db.QueryRow(ctx, query, id).Scan(&view.ID, &view.Name, &view.UnitPriceCents, &view.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("material not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find material view", err)
	}
	return &view, nil
}

func (s *MaterialReadStore) FindAll(ctx context.Context) ([]*queries.MaterialView, error) {
	query := `
		SELECT id, name, unit_price_cents, created_at
		FROM materials
		ORDER BY name
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list material views", err)
	}
	defer rows.Close()

	var result []*queries.MaterialView
	for rows.Next() {
		var view queries.MaterialView
		if err := rows.Scan(&view.ID, &view.Name, &view.UnitPriceCents, &view.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan material view", err)
		}
		result = append(result, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate material views", err)
	}
	return result, nil
}
