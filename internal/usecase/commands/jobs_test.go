//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"
	"lablend/internal/infra"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/config"
	"lablend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type JobUseCaseTestSuite struct {
	suite.Suite
	loanRepo         *fakeLoanRepo
	debtRepo         *fakeDebtRepo
	tokenRepo        *fakeTokenRepo
	notificationRepo *fakeNotificationRepo
	clock            *clock.MockClock
	uc               commands.JobCommands

	studentID uuid.UUID
	baseTime  time.Time
}

func (s *JobUseCaseTestSuite) SetupTest() {
	s.loanRepo = newFakeLoanRepo()
	s.debtRepo = newFakeDebtRepo()
	s.tokenRepo = newFakeTokenRepo()
	s.notificationRepo = &fakeNotificationRepo{}
	s.baseTime = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	s.clock = clock.NewMockClock(s.baseTime)
	s.uc = commands.NewJobUseCase(s.loanRepo, s.debtRepo, s.tokenRepo, s.notificationRepo,
		&fakeDB{}, s.clock, config.NewTestConfig().Lending)

	s.studentID = uuid.New()
}

func TestJobUseCaseSuite(t *testing.T) {
	suite.Run(t, new(JobUseCaseTestSuite))
}

// seedActiveLoan creates an active loan due at the given time.
func (s *JobUseCaseTestSuite) seedActiveLoan(dueAt time.Time) *loan.Loan {
	l, err := loan.NewLoan(s.studentID, uuid.New(), 1,
		loan.MustMoney(10000), dueAt, dueAt.Add(-96*time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(l.Activate(dueAt.Add(-95 * time.Hour)))
	s.Require().NoError(s.loanRepo.Create(context.Background(), nil, l))
	return l
}

func (s *JobUseCaseTestSuite) step(report *commands.RunReport, name string) *commands.StepReport {
	for i := range report.Steps {
		if report.Steps[i].Name == name {
			return &report.Steps[i]
		}
	}
	return nil
}

func (s *JobUseCaseTestSuite) TestRun_ExpiresDueLoans() {
	overdue := s.seedActiveLoan(s.baseTime.Add(-time.Hour))
	current := s.seedActiveLoan(s.baseTime.Add(48 * time.Hour))

	report, err := s.uc.Run(context.Background(), 1)

	s.Require().NoError(err)
	s.Equal(1, s.step(report, "expire_due_loans").Processed)
	s.Equal(loan.StatusExpired, overdue.Status())
	s.Equal(loan.StatusActive, current.Status())

	// a second run has nothing left to expire
	report, err = s.uc.Run(context.Background(), 2)
	s.Require().NoError(err)
	s.Equal(0, s.step(report, "expire_due_loans").Processed)
}

func (s *JobUseCaseTestSuite) TestRun_IssuesReturnTokensOnce() {
	dueSoon := s.seedActiveLoan(s.baseTime.Add(12 * time.Hour))
	s.seedActiveLoan(s.baseTime.Add(48 * time.Hour)) // outside lookahead

	report, err := s.uc.Run(context.Background(), 1)

	s.Require().NoError(err)
	s.Equal(1, s.step(report, "issue_return_tokens").Processed)
	s.Require().NotNil(dueSoon.ReturnToken())
	s.Equal([]string{"loan_return_prompt"}, s.notificationRepo.topics())

	attached := *dueSoon.ReturnToken()
	report, err = s.uc.Run(context.Background(), 2)
	s.Require().NoError(err)
	s.Equal(0, s.step(report, "issue_return_tokens").Processed)
	s.Equal(attached, *dueSoon.ReturnToken(), "repeat runs never rotate an issued token")
	s.Len(s.notificationRepo.jobs, 1, "repeat runs never re-notify")
}

func (s *JobUseCaseTestSuite) TestRun_GraceWindowTimeline() {
	l := s.seedActiveLoan(s.baseTime)
	loanID := l.ID()

	// inside the grace window: the loan expires but stays a loan
	s.clock.Set(s.baseTime.Add(23 * time.Hour))
	report, err := s.uc.Run(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal(1, s.step(report, "expire_due_loans").Processed)
	s.Equal(0, s.step(report, "convert_expired_loans").Processed)
	s.Equal(loan.StatusExpired, l.Status())

	// past the grace window: the loan becomes a provisional late debt
	s.clock.Set(s.baseTime.Add(25 * time.Hour))
	report, err = s.uc.Run(context.Background(), 2)
	s.Require().NoError(err)
	s.Equal(1, s.step(report, "convert_expired_loans").Processed)

	_, err = s.loanRepo.FindByID(context.Background(), nil, loanID)
	s.True(infra.IsKind(err, infra.KindNotFound), "a converted loan leaves no loan record")

	s.Require().Len(s.debtRepo.debts, 1)
	for _, d := range s.debtRepo.debts {
		s.Equal(loanID, d.OriginLoanID())
		s.Equal(debt.KindLate, d.Kind())
		s.False(d.Classified())
		s.EqualValues(10000, d.AdjustedPrice().Cents())
	}
	s.Contains(s.notificationRepo.topics(), "debt_created")
}

func (s *JobUseCaseTestSuite) TestRun_ConversionSkipsExistingDebt() {
	l := s.seedActiveLoan(s.baseTime)
	s.Require().NoError(l.Expire(s.baseTime))

	// a previous run created the debt but crashed before deleting the loan
	d, err := debt.NewFromLoan(l, debt.DefaultMultipliers(), s.baseTime)
	s.Require().NoError(err)
	s.Require().NoError(s.debtRepo.Create(context.Background(), nil, d))

	s.clock.Set(s.baseTime.Add(25 * time.Hour))
	report, err := s.uc.Run(context.Background(), 1)

	s.Require().NoError(err)
	s.Equal(1, s.step(report, "convert_expired_loans").Processed)
	s.Len(s.debtRepo.debts, 1, "recovery must not duplicate the obligation")
	s.NotContains(s.notificationRepo.topics(), "debt_created")
}

func (s *JobUseCaseTestSuite) TestRun_PromptStepGatedByCycle() {
	l := s.seedActiveLoan(s.baseTime)
	s.Require().NoError(l.Expire(s.baseTime))
	d, err := debt.NewFromLoan(l, debt.DefaultMultipliers(), s.baseTime)
	s.Require().NoError(err)
	s.Require().NoError(s.debtRepo.Create(context.Background(), nil, d))
	s.Require().NoError(s.loanRepo.Delete(context.Background(), nil, l.ID()))

	report, err := s.uc.Run(context.Background(), 5)
	s.Require().NoError(err)
	s.Nil(s.step(report, "prompt_unclassified_debts"))

	report, err = s.uc.Run(context.Background(), 6)
	s.Require().NoError(err)
	s.Equal(1, s.step(report, "prompt_unclassified_debts").Processed)
	s.Contains(s.notificationRepo.topics(), "debt_classification_prompt")
}

func (s *JobUseCaseTestSuite) TestRun_StepFailureIsIsolated() {
	s.seedActiveLoan(s.baseTime.Add(-time.Hour))
	s.loanRepo.expireErr = infra.WrapRepoErr("connection reset", nil)

	report, err := s.uc.Run(context.Background(), 1)

	s.Require().NoError(err, "a failing step is reported, not propagated")
	s.NotEmpty(s.step(report, "expire_due_loans").Errors)
	s.NotNil(s.step(report, "issue_return_tokens"), "later steps still run")
	s.True(report.Failed())
}
