package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/pullbill/pullbill/internal/api/v1"
	"github.com/pullbill/pullbill/internal/rest/middleware"
)

type Handlers struct {
	Health      *v1.HealthHandler
	Rate        *v1.RateHandler
	Executor    *v1.ExecutorHandler
	PullPayment *v1.PullPaymentHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CallerMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Exchange rate routes
	rates := router.Group("/rates")
	{
		rates.POST("", handlers.Rate.SetRate)
		rates.GET("", handlers.Rate.ListRates)
		rates.GET("/:currency", handlers.Rate.GetRate)
	}

	// Executor allow-list routes
	executors := router.Group("/executors")
	{
		executors.POST("", handlers.Executor.AddExecutor)
		executors.GET("", handlers.Executor.ListExecutors)
		executors.DELETE("/:account", handlers.Executor.RemoveExecutor)
	}

	// Pull payment routes
	pullpayments := router.Group("/pullpayments")
	{
		pullpayments.POST("", handlers.PullPayment.RegisterPullPayment)
		pullpayments.POST("/execute", handlers.PullPayment.ExecutePullPayment)
		pullpayments.POST("/cancel", handlers.PullPayment.CancelPullPayment)
		pullpayments.GET("/:client/:beneficiary", handlers.PullPayment.GetPullPayment)
	}

	// Ledger balance routes
	router.GET("/balances/:account", handlers.PullPayment.GetBalance)
}
