package loan

import (
	"errors"
	"math"
)

// Money is an integer amount of cents. Prices snapshot onto loans and debts
// at creation and never track later catalog changes.
type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, errors.New("money cannot be negative")
	}
	return Money{cents: cents}, nil
}

func MustMoney(cents int64) Money {
	m, err := NewMoney(cents)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64 {
	return m.cents
}

// Scale multiplies the amount by a non-negative factor, rounding to the
// nearest cent.
func (m Money) Scale(factor float64) (Money, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Money{}, errors.New("invalid scale factor")
	}
	return Money{cents: int64(math.Round(float64(m.cents) * factor))}, nil
}
