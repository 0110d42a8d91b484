//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"
	"lablend/internal/domain/token"
	"lablend/internal/infra"
	"lablend/internal/infra/stockledger"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/scancode"
	"lablend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ScanUseCaseTestSuite struct {
	suite.Suite
	loanRepo  *fakeLoanRepo
	debtRepo  *fakeDebtRepo
	tokenRepo *fakeTokenRepo
	ledger    *stockledger.MemoryLedger
	clock     *clock.MockClock
	uc        commands.ScanCommands

	adminID    uuid.UUID
	studentID  uuid.UUID
	materialID uuid.UUID
	baseTime   time.Time
}

func (s *ScanUseCaseTestSuite) SetupTest() {
	s.loanRepo = newFakeLoanRepo()
	s.debtRepo = newFakeDebtRepo()
	s.tokenRepo = newFakeTokenRepo()
	s.ledger = stockledger.NewMemoryLedger()
	s.baseTime = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	s.clock = clock.NewMockClock(s.baseTime)
	s.uc = commands.NewScanUseCase(s.loanRepo, s.debtRepo, s.tokenRepo, s.ledger, &fakeDB{}, s.clock)

	s.adminID = uuid.New()
	s.studentID = uuid.New()
	s.materialID = uuid.New()
}

func TestScanUseCaseSuite(t *testing.T) {
	suite.Run(t, new(ScanUseCaseTestSuite))
}

func (s *ScanUseCaseTestSuite) seedStock(quantity int64) {
	s.Require().NoError(s.ledger.Set(context.Background(), s.materialID, quantity))
}

func (s *ScanUseCaseTestSuite) stock() int64 {
	qty, err := s.ledger.Get(context.Background(), s.materialID)
	s.Require().NoError(err)
	return qty
}

// seedPendingLoan creates a pending loan plus its activation token and
// returns the scannable value.
func (s *ScanUseCaseTestSuite) seedPendingLoan(quantity int) (*loan.Loan, string) {
	l, err := loan.NewLoan(s.studentID, s.materialID, quantity,
		loan.MustMoney(10000), s.baseTime.Add(72*time.Hour), s.baseTime)
	s.Require().NoError(err)
	s.Require().NoError(s.loanRepo.Create(context.Background(), nil, l))

	tok := token.NewToken(l.ID().String(), token.PurposeActivate, l.ID(), s.baseTime, nil)
	_, err = s.tokenRepo.Issue(context.Background(), nil, tok)
	s.Require().NoError(err)
	return l, tok.Value()
}

func (s *ScanUseCaseTestSuite) seedActiveLoanWithReturnToken(quantity int) (*loan.Loan, string) {
	l, _ := s.seedPendingLoan(quantity)
	s.Require().NoError(l.Activate(s.baseTime))

	returnValue := scancode.NewValue()
	validUntil := l.DueAt().Add(2 * time.Hour)
	tok := token.NewToken(returnValue, token.PurposeReturnLoan, l.ID(), s.baseTime, &validUntil)
	_, err := s.tokenRepo.Issue(context.Background(), nil, tok)
	s.Require().NoError(err)
	s.Require().NoError(l.AttachReturnToken(returnValue))
	return l, returnValue
}

func (s *ScanUseCaseTestSuite) seedDebt(kind debt.Kind, classified bool) (*debt.Debt, string, token.Purpose) {
	l, err := loan.NewLoan(s.studentID, s.materialID, 1,
		loan.MustMoney(10000), s.baseTime.Add(time.Hour), s.baseTime)
	s.Require().NoError(err)

	d, err := debt.NewFromLoan(l, debt.DefaultMultipliers(), s.baseTime)
	s.Require().NoError(err)
	if classified {
		s.Require().NoError(d.Classify(kind, debt.DefaultMultipliers()))
	}
	s.Require().NoError(s.debtRepo.Create(context.Background(), nil, d))

	purpose := token.PurposePayDebt
	if kind == debt.KindLate {
		purpose = token.PurposeReturnDebt
	}
	value := scancode.NewValue()
	tok := token.NewToken(value, purpose, d.ID(), s.baseTime, nil)
	_, err = s.tokenRepo.Issue(context.Background(), nil, tok)
	s.Require().NoError(err)
	return d, value, purpose
}

func (s *ScanUseCaseTestSuite) TestActivate_Success() {
	s.seedStock(5)
	l, value := s.seedPendingLoan(2)

	result, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.Require().NoError(err)
	s.Equal(commands.OutcomeLoanActivated, result.Outcome)
	s.Equal(s.studentID, result.StudentID)
	s.Equal(l.ID(), *result.LoanID)
	s.Equal(loan.StatusActive, l.Status())
	s.EqualValues(3, s.stock())
}

func (s *ScanUseCaseTestSuite) TestActivate_AcceptsFullScanURL() {
	s.seedStock(1)
	_, value := s.seedPendingLoan(1)

	_, err := s.uc.Scan(context.Background(), "https://lab.example.com/activate/"+value, s.adminID)

	s.Require().NoError(err)
	s.EqualValues(0, s.stock())
}

func (s *ScanUseCaseTestSuite) TestScan_UnknownToken() {
	_, err := s.uc.Scan(context.Background(), "no-such-token", s.adminID)
	s.ErrorIs(err, commands.ErrTokenNotFound)
}

func (s *ScanUseCaseTestSuite) TestScan_SecondScanOfSameToken() {
	s.seedStock(5)
	_, value := s.seedPendingLoan(1)

	_, err := s.uc.Scan(context.Background(), value, s.adminID)
	s.Require().NoError(err)

	_, err = s.uc.Scan(context.Background(), value, s.adminID)
	s.ErrorIs(err, commands.ErrTokenConsumed)
	s.EqualValues(4, s.stock(), "a replayed scan must not move stock again")
}

func (s *ScanUseCaseTestSuite) TestScan_ExpiredToken() {
	s.seedStock(5)
	l, value := s.seedActiveLoanWithReturnToken(1)

	s.clock.Set(l.DueAt().Add(3 * time.Hour))
	_, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.ErrorIs(err, commands.ErrTokenExpired)
}

func (s *ScanUseCaseTestSuite) TestActivate_InsufficientStock() {
	s.seedStock(2)
	l, value := s.seedPendingLoan(3)

	_, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.ErrorIs(err, commands.ErrInsufficientStock)
	s.Equal(loan.StatusPending, l.Status())
	s.EqualValues(2, s.stock(), "a refused activation must not move stock")

	tok, findErr := s.tokenRepo.FindByValue(context.Background(), nil, value)
	s.Require().NoError(findErr)
	s.False(tok.Consumed(), "the token survives a stock refusal for a later retry")
}

func (s *ScanUseCaseTestSuite) TestActivate_CompetingLoansForLastUnit() {
	s.seedStock(1)
	_, first := s.seedPendingLoan(1)
	_, second := s.seedPendingLoan(1)

	_, err := s.uc.Scan(context.Background(), first, s.adminID)
	s.Require().NoError(err)

	_, err = s.uc.Scan(context.Background(), second, s.adminID)
	s.ErrorIs(err, commands.ErrInsufficientStock)
	s.EqualValues(0, s.stock())
}

// hookedLedger interposes on TryDecrement so a test can interleave another
// scan at the worst possible moment. The hook fires once.
type hookedLedger struct {
	*stockledger.MemoryLedger
	beforeDecrement func()
}

func (h *hookedLedger) TryDecrement(ctx context.Context, materialID uuid.UUID, amount int) (int64, error) {
	if h.beforeDecrement != nil {
		fn := h.beforeDecrement
		h.beforeDecrement = nil
		fn()
	}
	return h.MemoryLedger.TryDecrement(ctx, materialID, amount)
}

func (s *ScanUseCaseTestSuite) TestActivate_ConcurrentDoubleScanRefundsLoser() {
	s.seedStock(5)
	l, value := s.seedPendingLoan(1)

	hooked := &hookedLedger{MemoryLedger: s.ledger}
	uc := commands.NewScanUseCase(s.loanRepo, s.debtRepo, s.tokenRepo, hooked, &fakeDB{}, s.clock)

	// The competing admin's scan lands after this one passed the token and
	// loan checks but before it reserved stock.
	hooked.beforeDecrement = func() {
		_, err := uc.Scan(context.Background(), value, s.adminID)
		s.Require().NoError(err)
	}

	_, err := uc.Scan(context.Background(), value, s.adminID)

	s.ErrorIs(err, commands.ErrTokenConsumed)
	s.Equal(loan.StatusActive, l.Status())
	s.EqualValues(4, s.stock(), "the losing scan must hand its reservation back even though the loan went active")
}

func (s *ScanUseCaseTestSuite) TestActivate_FailedCommitRefundsStock() {
	s.seedStock(5)
	l, value := s.seedPendingLoan(2)
	s.loanRepo.activateErr = infra.WrapRepoErr("connection reset", nil)

	_, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.ErrorIs(err, commands.ErrDatabaseOperationFailed)
	s.Equal(loan.StatusPending, l.Status())
	s.EqualValues(5, s.stock(), "the reserved units must come back when the document write fails")
}

func (s *ScanUseCaseTestSuite) TestReturnLoan_Success() {
	s.seedStock(3)
	l, value := s.seedActiveLoanWithReturnToken(2)

	result, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.Require().NoError(err)
	s.Equal(commands.OutcomeLoanReturned, result.Outcome)
	s.EqualValues(5, s.stock())

	_, err = s.loanRepo.FindByID(context.Background(), nil, l.ID())
	s.True(infra.IsKind(err, infra.KindNotFound), "a returned loan leaves no record behind")
}

func (s *ScanUseCaseTestSuite) TestReturnDebt_LateDebt() {
	s.seedStock(0)
	d, value, _ := s.seedDebt(debt.KindLate, true)

	result, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.Require().NoError(err)
	s.Equal(commands.OutcomeDebtReturned, result.Outcome)
	s.Equal(debt.StatusReturned, d.Status())
	s.EqualValues(1, s.stock())
}

func (s *ScanUseCaseTestSuite) TestReturnDebt_RejectedForUnclassified() {
	s.seedStock(0)
	d, _, _ := s.seedDebt(debt.KindLate, false)

	value := scancode.NewValue()
	tok := token.NewToken(value, token.PurposeReturnDebt, d.ID(), s.baseTime, nil)
	_, err := s.tokenRepo.Issue(context.Background(), nil, tok)
	s.Require().NoError(err)

	_, err = s.uc.Scan(context.Background(), value, s.adminID)

	s.ErrorIs(err, commands.ErrWrongResolution)
	s.Equal(debt.StatusPending, d.Status())
	s.EqualValues(0, s.stock())
}

func (s *ScanUseCaseTestSuite) TestPayDebt_BrokenDebt() {
	s.seedStock(0)
	d, value, _ := s.seedDebt(debt.KindBroken, true)

	result, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.Require().NoError(err)
	s.Equal(commands.OutcomeDebtPaid, result.Outcome)
	s.Equal(debt.StatusPaid, d.Status())
	s.EqualValues(12000, *result.AmountCents, "broken debts are charged at 1.2x the unit price")
	s.EqualValues(0, s.stock(), "paying a debt never restocks the material")
	s.Require().NotNil(d.SettledVia())
	s.Equal(debt.ChannelInPerson, *d.SettledVia())
}

func (s *ScanUseCaseTestSuite) TestPayDebt_SettlesViaChosenChannel() {
	s.seedStock(0)
	d, value, _ := s.seedDebt(debt.KindBroken, false)
	s.Require().NoError(d.ChoosePaymentChannel(debt.ChannelOnline))
	s.Require().NoError(d.Classify(debt.KindBroken, debt.DefaultMultipliers()))

	_, err := s.uc.Scan(context.Background(), value, s.adminID)

	s.Require().NoError(err)
	s.Equal(debt.StatusPaid, d.Status())
	s.Require().NotNil(d.SettledVia())
	s.Equal(debt.ChannelOnline, *d.SettledVia())
}

func (s *ScanUseCaseTestSuite) TestPayDebt_LateDebtCannotBePaid() {
	d, _, _ := s.seedDebt(debt.KindLate, true)

	value := scancode.NewValue()
	tok := token.NewToken(value, token.PurposePayDebt, d.ID(), s.baseTime, nil)
	_, err := s.tokenRepo.Issue(context.Background(), nil, tok)
	s.Require().NoError(err)

	_, err = s.uc.Scan(context.Background(), value, s.adminID)

	s.ErrorIs(err, commands.ErrWrongResolution)
}
