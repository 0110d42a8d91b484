package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidDueDate     = errors.New("due date must be in the future")
	ErrNotPending         = errors.New("loan is not pending")
	ErrNotActive          = errors.New("loan is not active")
	ErrAlreadyExpired     = errors.New("loan is already expired")
	ErrNotExpired         = errors.New("loan is not expired")
	ErrGraceNotElapsed    = errors.New("grace window has not elapsed")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrReturnTokenPresent = errors.New("return token already issued")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

// Loan is one reservation of a quantity of one material by one student.
// Its id doubles as the human-facing loan code and as the activation token
// value. State only ever advances pending -> active -> expired; the record
// disappears on return or on conversion to a debt.
type Loan struct {
	id            uuid.UUID
	studentID     uuid.UUID
	materialID    uuid.UUID
	quantity      int
	unitPrice     Money
	adjustedPrice Money
	status        Status
	requestedAt   time.Time
	startedAt     *time.Time
	dueAt         time.Time
	returnToken   *string
}

func NewLoan(studentID, materialID uuid.UUID, quantity int, unitPrice Money, dueAt, now time.Time) (*Loan, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.Cents() < 0 {
		return nil, ErrNegativePrice
	}
	if !dueAt.After(now) {
		return nil, ErrInvalidDueDate
	}

	return &Loan{
		id:            uuid.New(),
		studentID:     studentID,
		materialID:    materialID,
		quantity:      quantity,
		unitPrice:     unitPrice,
		adjustedPrice: unitPrice,
		status:        StatusPending,
		requestedAt:   now,
		dueAt:         dueAt,
	}, nil
}

func ReconstructLoan(
	id, studentID, materialID uuid.UUID,
	quantity int,
	unitPrice, adjustedPrice Money,
	status Status,
	requestedAt time.Time,
	startedAt *time.Time,
	dueAt time.Time,
	returnToken *string,
) *Loan {
	return &Loan{
		id:            id,
		studentID:     studentID,
		materialID:    materialID,
		quantity:      quantity,
		unitPrice:     unitPrice,
		adjustedPrice: adjustedPrice,
		status:        status,
		requestedAt:   requestedAt,
		startedAt:     startedAt,
		dueAt:         dueAt,
		returnToken:   returnToken,
	}
}

// Activate promotes a pending loan after a validated activation scan.
func (l *Loan) Activate(now time.Time) error {
	if l.status != StatusPending {
		return ErrNotPending
	}
	l.status = StatusActive
	started := now
	l.startedAt = &started
	return nil
}

// Expire marks an active loan past its due date. Re-expiring is a no-op so
// overlapping sweep runs stay idempotent.
func (l *Loan) Expire(now time.Time) error {
	switch l.status {
	case StatusExpired:
		return nil
	case StatusActive:
		if now.Before(l.dueAt) {
			return ErrNotExpired
		}
		l.status = StatusExpired
		return nil
	default:
		return ErrNotActive
	}
}

// ConvertibleAt reports whether the loan may be converted to a debt: expired
// and past the grace window measured from the due date.
func (l *Loan) ConvertibleAt(now time.Time, grace time.Duration) bool {
	return l.status == StatusExpired && now.After(l.dueAt.Add(grace))
}

// DueWithin reports whether an active loan falls due inside the lookahead
// window (already-overdue loans count as due).
func (l *Loan) DueWithin(now time.Time, lookahead time.Duration) bool {
	return l.status == StatusActive && l.dueAt.Before(now.Add(lookahead))
}

func (l *Loan) AttachReturnToken(value string) error {
	if l.returnToken != nil {
		return ErrReturnTokenPresent
	}
	l.returnToken = &value
	return nil
}

func (l *Loan) ID() uuid.UUID          { return l.id }
func (l *Loan) StudentID() uuid.UUID   { return l.studentID }
func (l *Loan) MaterialID() uuid.UUID  { return l.materialID }
func (l *Loan) Quantity() int          { return l.quantity }
func (l *Loan) UnitPrice() Money       { return l.unitPrice }
func (l *Loan) AdjustedPrice() Money   { return l.adjustedPrice }
func (l *Loan) Status() Status         { return l.status }
func (l *Loan) RequestedAt() time.Time { return l.requestedAt }
func (l *Loan) StartedAt() *time.Time  { return l.startedAt }
func (l *Loan) DueAt() time.Time       { return l.dueAt }
func (l *Loan) ReturnToken() *string   { return l.returnToken }
