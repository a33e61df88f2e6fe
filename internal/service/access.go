package service

import (
	"context"

	"github.com/pullbill/pullbill/internal/api/dto"
)

// AccessService manages the executor allow-list. Executors are the
// accounts permitted to register and cancel pull payments on behalf
// of clients.
type AccessService interface {
	AddExecutor(ctx context.Context, req dto.ExecutorRequest) (*dto.ExecutorResponse, error)
	RemoveExecutor(ctx context.Context, req dto.ExecutorRequest) error
	ListExecutors(ctx context.Context) (*dto.ListExecutorsResponse, error)
}

type accessService struct {
	ServiceParams
}

func NewAccessService(params ServiceParams) AccessService {
	return &accessService{
		ServiceParams: params,
	}
}

func (s *accessService) AddExecutor(ctx context.Context, req dto.ExecutorRequest) (*dto.ExecutorResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	account := req.AccountAddress()
	if err := s.ExecutorRepo.Add(ctx, account); err != nil {
		return nil, err
	}

	s.Logger.Infow("executor added", "account", account.String())

	return &dto.ExecutorResponse{Account: account.String()}, nil
}

func (s *accessService) RemoveExecutor(ctx context.Context, req dto.ExecutorRequest) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return err
	}

	account := req.AccountAddress()
	if err := s.ExecutorRepo.Remove(ctx, account); err != nil {
		return err
	}

	s.Logger.Infow("executor removed", "account", account.String())
	return nil
}

func (s *accessService) ListExecutors(ctx context.Context) (*dto.ListExecutorsResponse, error) {
	accounts, err := s.ExecutorRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListExecutorsResponse{
		Items: make([]*dto.ExecutorResponse, 0, len(accounts)),
	}
	for _, account := range accounts {
		resp.Items = append(resp.Items, &dto.ExecutorResponse{Account: account.String()})
	}
	resp.Total = len(resp.Items)
	return resp, nil
}
