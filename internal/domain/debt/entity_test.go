//go:build unit

package debt_test

import (
	"testing"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newPendingDebt(t *testing.T) *debt.Debt {
	t.Helper()
	l, err := loan.NewLoan(uuid.New(), uuid.New(), 1, loan.MustMoney(10000), base.Add(48*time.Hour), base)
	require.NoError(t, err)
	d, err := debt.NewFromLoan(l, debt.DefaultMultipliers(), base.Add(73*time.Hour))
	require.NoError(t, err)
	return d
}

func TestNewFromLoan(t *testing.T) {
	l, err := loan.NewLoan(uuid.New(), uuid.New(), 3, loan.MustMoney(2500), base.Add(48*time.Hour), base)
	require.NoError(t, err)

	d, err := debt.NewFromLoan(l, debt.DefaultMultipliers(), base.Add(73*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, l.ID(), d.OriginLoanID())
	assert.Equal(t, l.StudentID(), d.StudentID())
	assert.Equal(t, l.MaterialID(), d.MaterialID())
	assert.Equal(t, 3, d.Quantity())
	assert.Equal(t, l.DueAt(), d.DueAt())
	assert.Equal(t, debt.KindLate, d.Kind())
	assert.False(t, d.Classified())
	assert.Equal(t, debt.StatusPending, d.Status())
	assert.Equal(t, debt.ChannelInPerson, d.PaymentChannel())
	// provisional late kind keeps the unit price
	assert.Equal(t, int64(2500), d.AdjustedPrice().Cents())
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name          string
		kind          debt.Kind
		adjustedCents int64
	}{
		{name: "late keeps unit price", kind: debt.KindLate, adjustedCents: 10000},
		{name: "broken applies 1.2", kind: debt.KindBroken, adjustedCents: 12000},
		{name: "lost applies 1.5", kind: debt.KindLost, adjustedCents: 15000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newPendingDebt(t)
			require.NoError(t, d.Classify(tc.kind, debt.DefaultMultipliers()))

			assert.True(t, d.Classified())
			assert.Equal(t, tc.kind, d.Kind())
			assert.Equal(t, tc.adjustedCents, d.AdjustedPrice().Cents())
		})
	}

	t.Run("payment channel travels with the answer", func(t *testing.T) {
		d := newPendingDebt(t)
		require.NoError(t, d.ChoosePaymentChannel(debt.ChannelOnline))
		require.NoError(t, d.Classify(debt.KindBroken, debt.DefaultMultipliers()))

		assert.Equal(t, debt.ChannelOnline, d.PaymentChannel())
		assert.ErrorIs(t, d.ChoosePaymentChannel(debt.ChannelInPerson), debt.ErrAlreadyClassified)
		assert.Equal(t, debt.ChannelOnline, d.PaymentChannel())
	})

	t.Run("unknown payment channel rejected", func(t *testing.T) {
		d := newPendingDebt(t)
		assert.ErrorIs(t, d.ChoosePaymentChannel("crypto"), debt.ErrInvalidChannel)
		assert.Equal(t, debt.ChannelInPerson, d.PaymentChannel())
	})

	t.Run("classification is one-time", func(t *testing.T) {
		d := newPendingDebt(t)
		require.NoError(t, d.Classify(debt.KindBroken, debt.DefaultMultipliers()))

		err := d.Classify(debt.KindLost, debt.DefaultMultipliers())
		assert.ErrorIs(t, err, debt.ErrAlreadyClassified)
		assert.Equal(t, debt.KindBroken, d.Kind())
		assert.Equal(t, int64(12000), d.AdjustedPrice().Cents())
	})
}

func TestResolutionGating(t *testing.T) {
	t.Run("unclassified debt resolves nowhere", func(t *testing.T) {
		d := newPendingDebt(t)
		assert.False(t, d.ResolvableByReturn())
		assert.False(t, d.ResolvableByPayment())
	})

	t.Run("late resolves by return only", func(t *testing.T) {
		d := newPendingDebt(t)
		require.NoError(t, d.Classify(debt.KindLate, debt.DefaultMultipliers()))

		assert.True(t, d.ResolvableByReturn())
		assert.False(t, d.ResolvableByPayment())
		assert.ErrorIs(t, d.MarkPaid("cash"), debt.ErrWrongResolution)
		require.NoError(t, d.MarkReturned())
		assert.Equal(t, debt.StatusReturned, d.Status())
	})

	t.Run("lost resolves by payment only", func(t *testing.T) {
		d := newPendingDebt(t)
		require.NoError(t, d.Classify(debt.KindLost, debt.DefaultMultipliers()))

		assert.ErrorIs(t, d.MarkReturned(), debt.ErrWrongResolution)
		require.NoError(t, d.MarkPaid("online"))
		assert.Equal(t, debt.StatusPaid, d.Status())
		require.NotNil(t, d.SettledVia())
		assert.Equal(t, "online", *d.SettledVia())
	})

	t.Run("terminal states stay terminal", func(t *testing.T) {
		d := newPendingDebt(t)
		require.NoError(t, d.Classify(debt.KindLate, debt.DefaultMultipliers()))
		require.NoError(t, d.MarkReturned())

		assert.ErrorIs(t, d.MarkReturned(), debt.ErrNotPending)
		assert.ErrorIs(t, d.MarkPaid("cash"), debt.ErrNotPending)
		assert.ErrorIs(t, d.Classify(debt.KindLost, debt.DefaultMultipliers()), debt.ErrNotPending)
	})

	t.Run("price unchanged by payment", func(t *testing.T) {
		d := newPendingDebt(t)
		require.NoError(t, d.Classify(debt.KindBroken, debt.DefaultMultipliers()))
		before := d.AdjustedPrice()

		require.NoError(t, d.MarkPaid("online"))
		assert.Equal(t, before, d.AdjustedPrice())
	})
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"late", "broken", "lost"} {
		k, err := debt.ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(k))
	}

	_, err := debt.ParseKind("stolen")
	assert.ErrorIs(t, err, debt.ErrInvalidKind)
}
