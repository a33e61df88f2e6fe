package service

import (
	"context"
	"testing"

	"github.com/pullbill/pullbill/internal/api/dto"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/testutil"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type AccessServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	accessService AccessService
}

func TestAccessService(t *testing.T) {
	suite.Run(t, new(AccessServiceTestSuite))
}

func (s *AccessServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	serviceParams := ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		Clock:          s.GetClock(),
		SubRepo:        s.GetStores().SubRepo,
		RateRepo:       s.GetStores().RateRepo,
		ExecutorRepo:   s.GetStores().ExecutorRepo,
		Ledger:         s.GetStores().Ledger,
		EventPublisher: s.GetPublisher(),
	}
	s.accessService = NewAccessService(serviceParams)
}

func (s *AccessServiceTestSuite) adminCtx() context.Context {
	return s.ContextWithCaller(s.GetConfig().AdminAddress())
}

func (s *AccessServiceTestSuite) TestAddExecutor() {
	resp, err := s.accessService.AddExecutor(s.adminCtx(), dto.ExecutorRequest{
		Account: "0x00000000000000000000000000000000000000e1",
	})
	s.NoError(err)
	s.Equal("0x00000000000000000000000000000000000000e1", resp.Account)

	ok, err := s.GetStores().ExecutorRepo.IsExecutor(s.GetContext(), types.MustParseAddress("0x00000000000000000000000000000000000000e1"))
	s.NoError(err)
	s.True(ok)
}

func (s *AccessServiceTestSuite) TestAddExecutorRequiresAdmin() {
	stranger := types.MustParseAddress("0x00000000000000000000000000000000000000ff")

	_, err := s.accessService.AddExecutor(s.ContextWithCaller(stranger), dto.ExecutorRequest{
		Account: "0x00000000000000000000000000000000000000e1",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.accessService.AddExecutor(s.GetContext(), dto.ExecutorRequest{
		Account: "0x00000000000000000000000000000000000000e1",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *AccessServiceTestSuite) TestAddExecutorRejectsZeroAddress() {
	_, err := s.accessService.AddExecutor(s.adminCtx(), dto.ExecutorRequest{
		Account: types.ZeroAddress.String(),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *AccessServiceTestSuite) TestAddExecutorTwiceFails() {
	req := dto.ExecutorRequest{Account: "0x00000000000000000000000000000000000000e1"}

	_, err := s.accessService.AddExecutor(s.adminCtx(), req)
	s.NoError(err)

	_, err = s.accessService.AddExecutor(s.adminCtx(), req)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *AccessServiceTestSuite) TestRemoveExecutor() {
	req := dto.ExecutorRequest{Account: "0x00000000000000000000000000000000000000e1"}

	_, err := s.accessService.AddExecutor(s.adminCtx(), req)
	s.NoError(err)

	s.NoError(s.accessService.RemoveExecutor(s.adminCtx(), req))

	ok, err := s.GetStores().ExecutorRepo.IsExecutor(s.GetContext(), types.MustParseAddress(req.Account))
	s.NoError(err)
	s.False(ok)

	// Removing a non-member is a no-op
	s.NoError(s.accessService.RemoveExecutor(s.adminCtx(), req))
}

func (s *AccessServiceTestSuite) TestListExecutors() {
	accounts := []string{
		"0x00000000000000000000000000000000000000e1",
		"0x00000000000000000000000000000000000000e2",
		"0x00000000000000000000000000000000000000e3",
	}
	for _, account := range accounts {
		_, err := s.accessService.AddExecutor(s.adminCtx(), dto.ExecutorRequest{Account: account})
		s.NoError(err)
	}

	resp, err := s.accessService.ListExecutors(s.GetContext())
	s.NoError(err)
	s.Equal(3, resp.Total)

	listed := lo.Map(resp.Items, func(item *dto.ExecutorResponse, _ int) string {
		return item.Account
	})
	s.ElementsMatch(accounts, listed)
}
