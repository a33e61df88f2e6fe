package service

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pullbill/pullbill/internal/config"
	"github.com/pullbill/pullbill/internal/domain/executor"
	"github.com/pullbill/pullbill/internal/domain/ledger"
	"github.com/pullbill/pullbill/internal/domain/rate"
	"github.com/pullbill/pullbill/internal/domain/subscription"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/publisher"
	"github.com/pullbill/pullbill/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Clock  clock.Clock

	// Repositories
	SubRepo      subscription.Repository
	RateRepo     rate.Repository
	ExecutorRepo executor.Repository

	// External collaborators
	Ledger ledger.TokenLedger

	// Publishers
	EventPublisher publisher.EventPublisher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	subRepo subscription.Repository,
	rateRepo rate.Repository,
	executorRepo executor.Repository,
	tokenLedger ledger.TokenLedger,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		Clock:          clock.New(),
		SubRepo:        subRepo,
		RateRepo:       rateRepo,
		ExecutorRepo:   executorRepo,
		Ledger:         tokenLedger,
		EventPublisher: eventPublisher,
	}
}

// requireAdmin is the capability check guarding administrator-only
// operations. The caller identity is read from the context.
func (p ServiceParams) requireAdmin(ctx context.Context) error {
	caller := types.GetCaller(ctx)
	if caller.IsZero() || caller != p.Config.AdminAddress() {
		return ierr.NewError("caller is not the administrator").
			WithHint("Only the administrator account may perform this operation").
			WithReportableDetails(map[string]any{"caller": caller.String()}).
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// requireExecutor is the capability check guarding executor-gated
// operations.
func (p ServiceParams) requireExecutor(ctx context.Context) error {
	caller := types.GetCaller(ctx)
	if caller.IsZero() {
		return ierr.NewError("no caller identity").
			WithHint("Caller identity is required").
			Mark(ierr.ErrPermissionDenied)
	}
	ok, err := p.ExecutorRepo.IsExecutor(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return ierr.NewError("caller is not an executor").
			WithHint("Only allow-listed executor accounts may perform this operation").
			WithReportableDetails(map[string]any{"caller": caller.String()}).
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// now is the engine clock in epoch seconds.
func (p ServiceParams) now() uint64 {
	return uint64(p.Clock.Now().UTC().Unix())
}

func (p ServiceParams) publish(ctx context.Context, eventName string, payload any) {
	if p.EventPublisher == nil {
		return
	}
	if err := p.EventPublisher.Publish(ctx, eventName, payload); err != nil {
		p.Logger.Errorw("failed to publish event",
			"event_name", eventName,
			"error", err,
		)
	}
}
