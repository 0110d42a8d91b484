package debt

import (
	"errors"
	"time"

	"lablend/internal/domain/loan"

	"github.com/google/uuid"
)

var (
	ErrInvalidKind       = errors.New("invalid debt kind")
	ErrInvalidChannel    = errors.New("invalid payment channel")
	ErrNotPending        = errors.New("debt is not pending")
	ErrAlreadyClassified = errors.New("debt is already classified")
	ErrNotClassified     = errors.New("debt is not classified")
	ErrWrongResolution   = errors.New("resolution not allowed for this kind")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusReturned Status = "returned"
)

func (s Status) String() string {
	return string(s)
}

type Kind string

const (
	KindLate   Kind = "late"
	KindBroken Kind = "broken"
	KindLost   Kind = "lost"
)

// Channels a payment-settled debt can be paid through.
const (
	ChannelInPerson = "in_person"
	ChannelOnline   = "online"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLate, KindBroken, KindLost:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// Multipliers maps a debt kind to the factor applied to the unit price.
type Multipliers struct {
	Late   float64
	Broken float64
	Lost   float64
}

func DefaultMultipliers() Multipliers {
	return Multipliers{Late: 1.0, Broken: 1.2, Lost: 1.5}
}

func (m Multipliers) For(k Kind) (float64, error) {
	switch k {
	case KindLate:
		return m.Late, nil
	case KindBroken:
		return m.Broken, nil
	case KindLost:
		return m.Lost, nil
	default:
		return 0, ErrInvalidKind
	}
}

// Debt is the obligation left behind by a loan that was never returned in
// time. It is created in pending state with the provisional kind "late" and
// stays open until classified and then resolved by return or payment.
// Once paid or returned it is terminal.
type Debt struct {
	id            uuid.UUID
	originLoanID  uuid.UUID
	studentID     uuid.UUID
	materialID    uuid.UUID
	quantity      int
	unitPrice     loan.Money
	adjustedPrice loan.Money
	kind          Kind
	classified    bool
	status        Status
	returnToken   *string
	payToken      *string
	createdAt     time.Time
	dueAt         time.Time
	settledVia    *string

	// paymentChannel is the channel the student picked when answering the
	// follow-up prompt; it becomes settledVia when a pay token is consumed.
	paymentChannel string
}

// NewFromLoan converts an expired loan into a pending debt. The provisional
// kind is always late until the student answers the follow-up prompt.
func NewFromLoan(l *loan.Loan, m Multipliers, now time.Time) (*Debt, error) {
	factor, err := m.For(KindLate)
	if err != nil {
		return nil, err
	}
	adjusted, err := l.UnitPrice().Scale(factor)
	if err != nil {
		return nil, err
	}

	return &Debt{
		id:             uuid.New(),
		originLoanID:   l.ID(),
		studentID:      l.StudentID(),
		materialID:     l.MaterialID(),
		quantity:       l.Quantity(),
		unitPrice:      l.UnitPrice(),
		adjustedPrice:  adjusted,
		kind:           KindLate,
		classified:     false,
		status:         StatusPending,
		createdAt:      now,
		dueAt:          l.DueAt(),
		paymentChannel: ChannelInPerson,
	}, nil
}

func ReconstructDebt(
	id, originLoanID, studentID, materialID uuid.UUID,
	quantity int,
	unitPrice, adjustedPrice loan.Money,
	kind Kind,
	classified bool,
	status Status,
	returnToken, payToken *string,
	createdAt, dueAt time.Time,
	settledVia *string,
	paymentChannel string,
) *Debt {
	return &Debt{
		id:             id,
		originLoanID:   originLoanID,
		studentID:      studentID,
		materialID:     materialID,
		quantity:       quantity,
		unitPrice:      unitPrice,
		adjustedPrice:  adjustedPrice,
		kind:           kind,
		classified:     classified,
		status:         status,
		returnToken:    returnToken,
		payToken:       payToken,
		createdAt:      createdAt,
		dueAt:          dueAt,
		settledVia:     settledVia,
		paymentChannel: paymentChannel,
	}
}

// Classify records the student's one-time answer about what happened to the
// material. The adjusted price is recomputed exactly once here and is
// immutable afterwards.
func (d *Debt) Classify(k Kind, m Multipliers) error {
	if d.status != StatusPending {
		return ErrNotPending
	}
	if d.classified {
		return ErrAlreadyClassified
	}
	factor, err := m.For(k)
	if err != nil {
		return err
	}
	adjusted, err := d.unitPrice.Scale(factor)
	if err != nil {
		return err
	}
	d.kind = k
	d.adjustedPrice = adjusted
	d.classified = true
	return nil
}

// ChoosePaymentChannel records how the debt will be paid if the answer makes
// it payment-settled. It accompanies the classification answer and is fixed
// with it.
func (d *Debt) ChoosePaymentChannel(channel string) error {
	if d.status != StatusPending {
		return ErrNotPending
	}
	if d.classified {
		return ErrAlreadyClassified
	}
	if channel != ChannelInPerson && channel != ChannelOnline {
		return ErrInvalidChannel
	}
	d.paymentChannel = channel
	return nil
}

// ResolvableByReturn gates the return path: only late debts are settled by
// handing the material back.
func (d *Debt) ResolvableByReturn() bool {
	return d.classified && d.kind == KindLate
}

// ResolvableByPayment gates the payment path: broken and lost debts are
// settled by paying the adjusted price.
func (d *Debt) ResolvableByPayment() bool {
	return d.classified && (d.kind == KindBroken || d.kind == KindLost)
}

func (d *Debt) MarkReturned() error {
	if d.status != StatusPending {
		return ErrNotPending
	}
	if !d.ResolvableByReturn() {
		return ErrWrongResolution
	}
	d.status = StatusReturned
	return nil
}

func (d *Debt) MarkPaid(channel string) error {
	if d.status != StatusPending {
		return ErrNotPending
	}
	if !d.ResolvableByPayment() {
		return ErrWrongResolution
	}
	d.status = StatusPaid
	d.settledVia = &channel
	return nil
}

func (d *Debt) AttachReturnToken(value string) { d.returnToken = &value }
func (d *Debt) AttachPayToken(value string)    { d.payToken = &value }

func (d *Debt) ID() uuid.UUID             { return d.id }
func (d *Debt) OriginLoanID() uuid.UUID   { return d.originLoanID }
func (d *Debt) StudentID() uuid.UUID      { return d.studentID }
func (d *Debt) MaterialID() uuid.UUID     { return d.materialID }
func (d *Debt) Quantity() int             { return d.quantity }
func (d *Debt) UnitPrice() loan.Money     { return d.unitPrice }
func (d *Debt) AdjustedPrice() loan.Money { return d.adjustedPrice }
func (d *Debt) Kind() Kind                { return d.kind }
func (d *Debt) Classified() bool          { return d.classified }
func (d *Debt) Status() Status            { return d.status }
func (d *Debt) ReturnToken() *string      { return d.returnToken }
func (d *Debt) PayToken() *string         { return d.payToken }
func (d *Debt) CreatedAt() time.Time      { return d.createdAt }
func (d *Debt) DueAt() time.Time          { return d.dueAt }
func (d *Debt) SettledVia() *string       { return d.settledVia }
func (d *Debt) PaymentChannel() string    { return d.paymentChannel }
