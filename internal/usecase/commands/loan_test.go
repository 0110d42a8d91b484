//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"lablend/internal/domain/loan"
	"lablend/internal/domain/token"
	reqdto "lablend/internal/handler/dto/request"
	"lablend/internal/infra/repository"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/config"
	"lablend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type LoanUseCaseTestSuite struct {
	suite.Suite
	loanRepo     *fakeLoanRepo
	materialRepo *fakeMaterialRepo
	tokenRepo    *fakeTokenRepo
	clock        *clock.MockClock
	uc           commands.LoanCommands

	studentID  uuid.UUID
	materialID uuid.UUID
	baseTime   time.Time
}

func (s *LoanUseCaseTestSuite) SetupTest() {
	s.loanRepo = newFakeLoanRepo()
	s.materialRepo = newFakeMaterialRepo()
	s.tokenRepo = newFakeTokenRepo()
	s.baseTime = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	s.clock = clock.NewMockClock(s.baseTime)
	s.uc = commands.NewLoanUseCase(s.loanRepo, s.materialRepo, s.tokenRepo,
		&fakeDB{}, s.clock, config.NewTestConfig().Lending)

	s.studentID = uuid.New()
	s.materialID = uuid.New()
	s.Require().NoError(s.materialRepo.Create(context.Background(), nil, repository.MaterialRow{
		ID:             s.materialID,
		Name:           "oscilloscope",
		UnitPriceCents: 10000,
		CreatedAt:      s.baseTime,
	}))
}

func TestLoanUseCaseSuite(t *testing.T) {
	suite.Run(t, new(LoanUseCaseTestSuite))
}

func (s *LoanUseCaseTestSuite) request() reqdto.CreateLoanRequest {
	return reqdto.CreateLoanRequest{
		MaterialID: s.materialID,
		Quantity:   2,
		DueAt:      s.baseTime.Add(72 * time.Hour),
	}
}

func (s *LoanUseCaseTestSuite) TestCreateLoan_Success() {
	result, err := s.uc.CreateLoan(context.Background(), s.studentID, s.request())

	s.Require().NoError(err)
	s.Contains(result.ActivationScanURL, "/activate/"+result.LoanID.String())

	created, err := s.loanRepo.FindByID(context.Background(), nil, result.LoanID)
	s.Require().NoError(err)
	s.Equal(loan.StatusPending, created.Status())
	s.EqualValues(10000, created.UnitPrice().Cents(), "the catalog price is snapshotted at request time")

	// the loan id doubles as the activation token value
	tok, err := s.tokenRepo.FindByValue(context.Background(), nil, result.LoanID.String())
	s.Require().NoError(err)
	s.Equal(token.PurposeActivate, tok.Purpose())
	s.Nil(tok.ValidUntil(), "activation tokens never expire")
}

func (s *LoanUseCaseTestSuite) TestCreateLoan_UnknownMaterial() {
	req := s.request()
	req.MaterialID = uuid.New()

	_, err := s.uc.CreateLoan(context.Background(), s.studentID, req)
	s.ErrorIs(err, commands.ErrMaterialNotFound)
}

func (s *LoanUseCaseTestSuite) TestCreateLoan_InvalidQuantity() {
	req := s.request()
	req.Quantity = 0

	_, err := s.uc.CreateLoan(context.Background(), s.studentID, req)
	s.ErrorIs(err, commands.ErrDomainValidation)
}

func (s *LoanUseCaseTestSuite) TestCreateLoan_DueDateInPast() {
	req := s.request()
	req.DueAt = s.baseTime.Add(-time.Hour)

	_, err := s.uc.CreateLoan(context.Background(), s.studentID, req)
	s.ErrorIs(err, commands.ErrDomainValidation)
}
