package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pullbill/pullbill/internal/api"
	v1 "github.com/pullbill/pullbill/internal/api/v1"
	"github.com/pullbill/pullbill/internal/config"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/publisher"
	"github.com/pullbill/pullbill/internal/pubsub/memory"
	"github.com/pullbill/pullbill/internal/repository"
	"github.com/pullbill/pullbill/internal/service"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/pullbill/pullbill/internal/validator"
	"github.com/pullbill/pullbill/internal/webhook"
	"go.uber.org/fx"
)

// @title PullBill API
// @version 1.0
// @description Signed-consent recurring pull-payment billing engine
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// PubSub
			memory.NewPubSub,

			// Event Publisher
			publisher.NewEventPublisher,

			// Webhook consumer
			webhook.NewWebhookService,

			// Repositories
			repository.NewSubscriptionRepository,
			repository.NewRateRepository,
			repository.NewExecutorRepository,
			repository.NewTokenLedger,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewAccessService,
			service.NewRateService,
			service.NewBillingService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			initValidator,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func initValidator() {
	validator.NewValidator()
}

func provideHandlers(
	logger *logger.Logger,
	accessService service.AccessService,
	rateService service.RateService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(logger),
		Rate:        v1.NewRateHandler(rateService, logger),
		Executor:    v1.NewExecutorHandler(accessService, logger),
		PullPayment: v1.NewPullPaymentHandler(billingService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startWebhookConsumer(lc, webhookService, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startWebhookConsumer(
	lc fx.Lifecycle,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting webhook consumer...")
			return webhookService.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down webhook consumer...")
			webhookService.Stop()
			return nil
		},
	})
}
