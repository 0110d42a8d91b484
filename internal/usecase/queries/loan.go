package queries

import (
	"context"
	"time"

	"lablend/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrAccessDenied = errs.New("access denied")

// Actor identifies the authenticated caller on the read side. Students only
// see their own records; admins see everything.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.Admin || a.ID == ownerID
}

// Read models (DTO for read side)
type LoanView struct {
	ID                 uuid.UUID  `json:"id"`
	StudentID          uuid.UUID  `json:"student_id"`
	MaterialID         uuid.UUID  `json:"material_id"`
	MaterialName       string     `json:"material_name"`
	Quantity           int        `json:"quantity"`
	UnitPriceCents     int64      `json:"unit_price_cents"`
	AdjustedPriceCents int64      `json:"adjusted_price_cents"`
	Status             string     `json:"status"`
	RequestedAt        time.Time  `json:"requested_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	DueAt              time.Time  `json:"due_at"`
	ReturnScanURL      *string    `json:"return_scan_url,omitempty"`
}

type LoanQueries interface {
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*LoanView, error)
	ListByStudent(ctx context.Context, actor Actor, studentID uuid.UUID) ([]*LoanView, error)
}

type LoanReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LoanView, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*LoanView, error)
}

type loanQueriesImpl struct {
	store LoanReadStore
}

func NewLoanQueries(store LoanReadStore) LoanQueries {
	return &loanQueriesImpl{store: store}
}

func (q *loanQueriesImpl) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*LoanView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(view.StudentID) {
		return nil, ErrAccessDenied
	}
	return view, nil
}

func (q *loanQueriesImpl) ListByStudent(ctx context.Context, actor Actor, studentID uuid.UUID) ([]*LoanView, error) {
	if !actor.CanAccess(studentID) {
		return nil, ErrAccessDenied
	}
	return q.store.FindByStudent(ctx, studentID)
}
