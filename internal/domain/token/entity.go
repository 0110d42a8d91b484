package token

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPurpose  = errors.New("invalid token purpose")
	ErrAlreadyConsumed = errors.New("token already consumed")
	ErrExpired         = errors.New("token expired")
)

// Purpose scopes a token to exactly one kind of transition.
type Purpose string

const (
	PurposeActivate   Purpose = "activate"
	PurposeReturnLoan Purpose = "return_loan"
	PurposeReturnDebt Purpose = "return_debt"
	PurposePayDebt    Purpose = "pay_debt"
)

func (p Purpose) String() string {
	return string(p)
}

// Path is the URL segment used when the token is encoded into a scan value.
func (p Purpose) Path() string {
	switch p {
	case PurposeActivate:
		return "activate"
	case PurposeReturnLoan:
		return "return-loan"
	case PurposeReturnDebt:
		return "return-debt"
	case PurposePayDebt:
		return "pay-debt"
	default:
		return "scan"
	}
}

func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposeActivate, PurposeReturnLoan, PurposeReturnDebt, PurposePayDebt:
		return Purpose(s), nil
	default:
		return "", ErrInvalidPurpose
	}
}

// Token is a single-use capability bound to one loan or debt record.
// Consumption is monotonic: consumed flips false -> true exactly once.
type Token struct {
	value         string
	purpose       Purpose
	ownerRecordID uuid.UUID
	issuedAt      time.Time
	validUntil    *time.Time
	consumed      bool
	consumedAt    *time.Time
	consumedBy    *uuid.UUID
}

func NewToken(value string, purpose Purpose, ownerRecordID uuid.UUID, issuedAt time.Time, validUntil *time.Time) *Token {
	return &Token{
		value:         value,
		purpose:       purpose,
		ownerRecordID: ownerRecordID,
		issuedAt:      issuedAt,
		validUntil:    validUntil,
	}
}

func ReconstructToken(
	value string,
	purpose Purpose,
	ownerRecordID uuid.UUID,
	issuedAt time.Time,
	validUntil *time.Time,
	consumed bool,
	consumedAt *time.Time,
	consumedBy *uuid.UUID,
) *Token {
	return &Token{
		value:         value,
		purpose:       purpose,
		ownerRecordID: ownerRecordID,
		issuedAt:      issuedAt,
		validUntil:    validUntil,
		consumed:      consumed,
		consumedAt:    consumedAt,
		consumedBy:    consumedBy,
	}
}

// Usable checks consumption and expiry without mutating the token.
func (t *Token) Usable(now time.Time) error {
	if t.consumed {
		return ErrAlreadyConsumed
	}
	if t.validUntil != nil && now.After(*t.validUntil) {
		return ErrExpired
	}
	return nil
}

// Consume flips the token to consumed. The persistent consumption is a
// conditional update in the repository; this mirrors it for in-memory use.
func (t *Token) Consume(adminID uuid.UUID, now time.Time) error {
	if err := t.Usable(now); err != nil {
		return err
	}
	t.consumed = true
	t.consumedAt = &now
	t.consumedBy = &adminID
	return nil
}

func (t *Token) Value() string            { return t.value }
func (t *Token) Purpose() Purpose         { return t.purpose }
func (t *Token) OwnerRecordID() uuid.UUID { return t.ownerRecordID }
func (t *Token) IssuedAt() time.Time      { return t.issuedAt }
func (t *Token) ValidUntil() *time.Time   { return t.validUntil }
func (t *Token) Consumed() bool           { return t.consumed }
func (t *Token) ConsumedAt() *time.Time   { return t.consumedAt }
func (t *Token) ConsumedBy() *uuid.UUID   { return t.consumedBy }
