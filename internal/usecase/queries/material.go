package queries

import (
	"context"
	"errors"
	"time"

	"lablend/internal/infra/stockledger"

	"github.com/google/uuid"
)

// MaterialView merges the catalog entry with the live counter from the stock
// ledger. The two stores are independently consistent, so the quantity here
// is a point-in-time reading, not a reservation.
type MaterialView struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	QuantityAvailable int64     `json:"quantity_available"`
	CreatedAt         time.Time `json:"created_at"`
}

type MaterialQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*MaterialView, error)
	List(ctx context.Context) ([]*MaterialView, error)
}

type MaterialReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MaterialView, error)
	FindAll(ctx context.Context) ([]*MaterialView, error)
}

// StockReader is the read-only slice of the stock ledger the catalog needs.
type StockReader interface {
	Get(ctx context.Context, materialID uuid.UUID) (int64, error)
}

type materialQueriesImpl struct {
	store  MaterialReadStore
	ledger StockReader
}

func NewMaterialQueries(store MaterialReadStore, ledger StockReader) MaterialQueries {
	return &materialQueriesImpl{store: store, ledger: ledger}
}

func (q *materialQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*MaterialView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := q.attachQuantity(ctx, view); err != nil {
		return nil, err
	}
	return view, nil
}

func (q *materialQueriesImpl) List(ctx context.Context) ([]*MaterialView, error) {
	views, err := q.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, view := range views {
		if err := q.attachQuantity(ctx, view); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (q *materialQueriesImpl) attachQuantity(ctx context.Context, view *MaterialView) error {
	qty, err := q.ledger.Get(ctx, view.ID)
	if err != nil {
		// counter not seeded yet: the catalog row exists but registration
		// has not finished, report zero availability
		if errors.Is(err, stockledger.ErrUnknownMaterial) {
			view.QuantityAvailable = 0
			return nil
		}
		return err
	}
	view.QuantityAvailable = qty
	return nil
}
