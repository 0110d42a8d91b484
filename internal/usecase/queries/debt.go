package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DebtView struct {
	ID                 uuid.UUID `json:"id"`
	OriginLoanID       uuid.UUID `json:"origin_loan_id"`
	StudentID          uuid.UUID `json:"student_id"`
	MaterialID         uuid.UUID `json:"material_id"`
	MaterialName       string    `json:"material_name"`
	Quantity           int       `json:"quantity"`
	UnitPriceCents     int64     `json:"unit_price_cents"`
	AdjustedPriceCents int64     `json:"adjusted_price_cents"`
	Kind               string    `json:"kind"`
	Classified         bool      `json:"classified"`
	Status             string    `json:"status"`
	ReturnScanURL      *string   `json:"return_scan_url,omitempty"`
	PayScanURL         *string   `json:"pay_scan_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	DueAt              time.Time `json:"due_at"`
	SettledVia         *string   `json:"settled_via,omitempty"`
}

type DebtQueries interface {
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*DebtView, error)
	ListByStudent(ctx context.Context, actor Actor, studentID uuid.UUID) ([]*DebtView, error)
}

type DebtReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DebtView, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*DebtView, error)
}

type debtQueriesImpl struct {
	store DebtReadStore
}

func NewDebtQueries(store DebtReadStore) DebtQueries {
	return &debtQueriesImpl{store: store}
}

func (q *debtQueriesImpl) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*DebtView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(view.StudentID) {
		return nil, ErrAccessDenied
	}
	return view, nil
}

func (q *debtQueriesImpl) ListByStudent(ctx context.Context, actor Actor, studentID uuid.UUID) ([]*DebtView, error) {
	if !actor.CanAccess(studentID) {
		return nil, ErrAccessDenied
	}
	return q.store.FindByStudent(ctx, studentID)
}
