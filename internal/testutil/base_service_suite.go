package testutil

import (
	"context"
	"time"

	"github.com/facebookgo/clock"
	"github.com/pullbill/pullbill/internal/config"
	"github.com/pullbill/pullbill/internal/domain/executor"
	"github.com/pullbill/pullbill/internal/domain/rate"
	"github.com/pullbill/pullbill/internal/domain/subscription"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/repository/memory"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/pullbill/pullbill/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SubRepo      subscription.Repository
	RateRepo     rate.Repository
	ExecutorRepo executor.Repository
	Ledger       *memory.LedgerStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *InMemoryEventPublisher
	logger    *logger.Logger
	config    *config.Configuration
	clock     *clock.Mock
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.publisher = NewInMemoryEventPublisher()
	s.clock = clock.NewMock()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubRepo:      memory.NewSubscriptionStore(),
		RateRepo:     memory.NewRateStore(),
		ExecutorRepo: memory.NewExecutorStore(),
		Ledger:       memory.NewLedgerStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.SubRepo.(*memory.SubscriptionStore).Clear()
	s.stores.RateRepo.(*memory.RateStore).Clear()
	s.stores.ExecutorRepo.(*memory.ExecutorStore).Clear()
	s.stores.Ledger.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// ContextWithCaller returns the test context with a caller identity attached
func (s *BaseServiceTestSuite) ContextWithCaller(caller types.Address) context.Context {
	return types.SetCaller(s.ctx, caller)
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetClock returns the mock engine clock
func (s *BaseServiceTestSuite) GetClock() *clock.Mock {
	return s.clock
}

// Now returns the mock clock reading in epoch seconds
func (s *BaseServiceTestSuite) Now() uint64 {
	return uint64(s.clock.Now().Unix())
}

// AdvanceTo moves the mock clock forward to the given epoch second
func (s *BaseServiceTestSuite) AdvanceTo(epoch uint64) {
	now := s.Now()
	if epoch > now {
		s.clock.Add(time.Duration(epoch-now) * time.Second)
	}
}
