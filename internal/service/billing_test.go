package service

import (
	"testing"

	"github.com/pullbill/pullbill/internal/api/dto"
	"github.com/pullbill/pullbill/internal/consent"
	"github.com/pullbill/pullbill/internal/domain/rate"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/testutil"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	billingService BillingService
	testData       struct {
		client      *testutil.Signer
		clientAddr  types.Address
		beneficiary types.Address
		executor    types.Address
		admin       types.Address
	}
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}

func (s *BillingServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupServices()
	s.setupTestData()
}

func (s *BillingServiceTestSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *BillingServiceTestSuite) setupServices() {
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

	s.billingService = NewBillingService(serviceParams)
}

func (s *BillingServiceTestSuite) setupTestData() {
	// Start the engine clock at a realistic epoch
	s.AdvanceTo(1_700_000_000)

	s.testData.client = testutil.NewSigner()
	s.testData.clientAddr = s.testData.client.Address()
	s.testData.beneficiary = types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0")
	s.testData.executor = types.MustParseAddress("0x00000000000000000000000000000000000000e1")
	s.testData.admin = s.GetConfig().AdminAddress()

	err := s.GetStores().ExecutorRepo.Add(s.GetContext(), s.testData.executor)
	s.NoError(err)

	// EUR rate 10^8, USD rate 2*10^8 in scaled fixed point
	s.NoError(s.GetStores().RateRepo.Set(s.GetContext(), &rate.ExchangeRate{
		Currency: "EUR",
		Rate:     decimal.New(1, types.RateDecimals-2),
	}))
	s.NoError(s.GetStores().RateRepo.Set(s.GetContext(), &rate.ExchangeRate{
		Currency: "USD",
		Rate:     decimal.New(2, types.RateDecimals-2),
	}))

	// Seed the client with 10000 tokens and a matching engine allowance
	funds := decimal.New(10_000, types.TokenDecimals)
	s.GetStores().Ledger.Mint(s.testData.clientAddr, funds)
	s.GetStores().Ledger.Approve(s.testData.clientAddr, funds)
}

// tokens returns n whole tokens in base units.
func tokens(n int64) decimal.Decimal {
	return decimal.New(n, types.TokenDecimals)
}

func (s *BillingServiceTestSuite) registerRequest(terms consent.RegistrationTerms, paymentID string) dto.RegisterPullPaymentRequest {
	sig := s.testData.client.SignHex(consent.RegistrationMessage(terms))
	return dto.RegisterPullPaymentRequest{
		Signature:            sig,
		MerchantID:           "merchantID_1",
		PaymentID:            paymentID,
		Client:               s.testData.clientAddr.String(),
		Beneficiary:          terms.Beneficiary.String(),
		Currency:             terms.Currency,
		InitialAmountCents:   terms.InitialAmountCents,
		RecurringAmountCents: terms.RecurringAmountCents,
		FrequencySeconds:     terms.FrequencySeconds,
		RemainingPayments:    terms.RemainingPayments,
		StartTime:            terms.StartTime,
	}
}

func (s *BillingServiceTestSuite) defaultTerms() consent.RegistrationTerms {
	return consent.RegistrationTerms{
		Beneficiary:          s.testData.beneficiary,
		Currency:             "EUR",
		InitialAmountCents:   0,
		RecurringAmountCents: 1000,
		FrequencySeconds:     30 * 24 * 3600,
		RemainingPayments:    12,
		StartTime:            s.Now() + 3600,
	}
}

func (s *BillingServiceTestSuite) register(terms consent.RegistrationTerms, paymentID string) *dto.SubscriptionResponse {
	resp, err := s.billingService.RegisterPullPayment(
		s.ContextWithCaller(s.testData.executor),
		s.registerRequest(terms, paymentID),
	)
	s.NoError(err)
	s.NotNil(resp)
	return resp
}

func (s *BillingServiceTestSuite) execute(paymentID string) (*dto.ExecutionResponse, error) {
	return s.billingService.ExecutePullPayment(
		s.ContextWithCaller(s.testData.beneficiary),
		dto.ExecutePullPaymentRequest{
			Client:    s.testData.clientAddr.String(),
			PaymentID: paymentID,
		},
	)
}

func (s *BillingServiceTestSuite) cancelRequest(paymentID string) dto.CancelPullPaymentRequest {
	sig := s.testData.client.SignHex(consent.CancellationMessage(paymentID, s.testData.beneficiary))
	return dto.CancelPullPaymentRequest{
		Signature:   sig,
		PaymentID:   paymentID,
		Client:      s.testData.clientAddr.String(),
		Beneficiary: s.testData.beneficiary.String(),
	}
}

func (s *BillingServiceTestSuite) TestRegisterPullPayment() {
	terms := s.defaultTerms()
	resp := s.register(terms, "paymentID_1")

	s.Equal(s.testData.clientAddr, resp.Client)
	s.Equal(s.testData.beneficiary, resp.Beneficiary)
	s.Equal("paymentID_1", resp.PaymentID)
	s.Equal(terms.RecurringAmountCents, resp.RecurringAmountCents)
	s.Equal(terms.RemainingPayments, resp.RemainingPayments)
	s.Equal(terms.StartTime, resp.StartTime)
	s.Equal(terms.StartTime, resp.NextPaymentTime)
	s.Zero(resp.LastPaymentTime)
	s.Zero(resp.CancelTime)

	stored, err := s.GetStores().SubRepo.Get(s.GetContext(), s.testData.clientAddr, s.testData.beneficiary)
	s.NoError(err)
	s.True(stored.Exists())

	events := s.GetPublisher().Events()
	s.Len(events, 1)
	s.Equal(types.WebhookEventPullPaymentRegistered, events[0].EventName)
}

func (s *BillingServiceTestSuite) TestRegisterPullPaymentRequiresExecutor() {
	req := s.registerRequest(s.defaultTerms(), "paymentID_1")

	_, err := s.billingService.RegisterPullPayment(s.ContextWithCaller(s.testData.beneficiary), req)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.billingService.RegisterPullPayment(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *BillingServiceTestSuite) TestRegisterPullPaymentConsentMismatch() {
	// Signature produced by a different key
	stranger := testutil.NewSigner()
	terms := s.defaultTerms()
	req := s.registerRequest(terms, "paymentID_1")
	req.Signature = stranger.SignHex(consent.RegistrationMessage(terms))

	_, err := s.billingService.RegisterPullPayment(s.ContextWithCaller(s.testData.executor), req)
	s.Error(err)
	s.True(ierr.IsConsentMismatch(err))
}

func (s *BillingServiceTestSuite) TestRegisterPullPaymentTamperedTerms() {
	// Consent signed over 1000 cents, request relays 2000
	terms := s.defaultTerms()
	req := s.registerRequest(terms, "paymentID_1")
	req.RecurringAmountCents = 2000

	_, err := s.billingService.RegisterPullPayment(s.ContextWithCaller(s.testData.executor), req)
	s.Error(err)
	s.True(ierr.IsConsentMismatch(err) || ierr.IsInvalidSignature(err))

	_, gerr := s.billingService.GetPullPayment(s.GetContext(), s.testData.clientAddr, s.testData.beneficiary)
	s.True(ierr.IsNotFound(gerr))
}

func (s *BillingServiceTestSuite) TestRegisterPullPaymentInvalidSchedule() {
	terms := s.defaultTerms()
	terms.FrequencySeconds = 0
	req := s.registerRequest(terms, "paymentID_1")

	_, err := s.billingService.RegisterPullPayment(s.ContextWithCaller(s.testData.executor), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceTestSuite) TestRegisterPullPaymentOverwrites() {
	s.register(s.defaultTerms(), "paymentID_1")

	terms := s.defaultTerms()
	terms.RecurringAmountCents = 500
	terms.RemainingPayments = 6
	resp := s.register(terms, "paymentID_2")

	s.Equal("paymentID_2", resp.PaymentID)
	s.Equal(uint64(500), resp.RecurringAmountCents)
	s.Equal(uint64(6), resp.RemainingPayments)
}

func (s *BillingServiceTestSuite) TestExecuteInitialPaymentBeforeStart() {
	terms := s.defaultTerms()
	terms.InitialAmountCents = 1000
	s.register(terms, "paymentID_1")

	// The signup fee is chargeable immediately, before the start time
	resp, err := s.execute("paymentID_1")
	s.NoError(err)
	s.True(tokens(1000).Equal(resp.AmountTokens))
	s.Zero(resp.InitialAmountCents)
	s.Equal(terms.RemainingPayments, resp.RemainingPayments)
	s.Equal(terms.StartTime, resp.NextPaymentTime)
	s.Equal(s.Now(), resp.LastPaymentTime)

	balance, err := s.GetStores().Ledger.BalanceOf(s.GetContext(), s.testData.beneficiary)
	s.NoError(err)
	s.True(tokens(1000).Equal(balance))
}

func (s *BillingServiceTestSuite) TestRegisterOverCancelledResetsHistory() {
	terms := s.defaultTerms()
	s.register(terms, "paymentID_1")

	_, err := s.billingService.CancelPullPayment(
		s.ContextWithCaller(s.testData.executor),
		s.cancelRequest("paymentID_1"),
	)
	s.NoError(err)

	// A fresh registration discards the cancellation history
	resp := s.register(terms, "paymentID_2")
	s.Zero(resp.CancelTime)

	s.AdvanceTo(terms.StartTime)
	exec, err := s.execute("paymentID_2")
	s.NoError(err)
	s.True(tokens(1000).Equal(exec.AmountTokens))
}

func (s *BillingServiceTestSuite) TestExecuteInitialThenRecurring() {
	terms := s.defaultTerms()
	terms.Currency = "USD"
	terms.InitialAmountCents = 100
	terms.RecurringAmountCents = 200
	s.register(terms, "paymentID_1")

	// Initial charge: 100 US cents at the 2*10^8 rate is 50 tokens
	resp, err := s.execute("paymentID_1")
	s.NoError(err)
	s.True(tokens(50).Equal(resp.AmountTokens))

	// First recurring charge once the start time arrives
	s.AdvanceTo(terms.StartTime)
	resp, err = s.execute("paymentID_1")
	s.NoError(err)
	s.True(tokens(100).Equal(resp.AmountTokens))
	s.Equal(terms.RemainingPayments-1, resp.RemainingPayments)

	balance, berr := s.GetStores().Ledger.BalanceOf(s.GetContext(), s.testData.beneficiary)
	s.NoError(berr)
	s.True(tokens(150).Equal(balance))
}

func (s *BillingServiceTestSuite) TestExecuteRecurringPayment() {
	terms := s.defaultTerms()
	s.register(terms, "paymentID_1")
	s.AdvanceTo(terms.StartTime)

	resp, err := s.execute("paymentID_1")
	s.NoError(err)
	s.True(tokens(1000).Equal(resp.AmountTokens))
	s.Equal(terms.RemainingPayments-1, resp.RemainingPayments)
	s.Equal(terms.StartTime+terms.FrequencySeconds, resp.NextPaymentTime)
	s.Equal(s.Now(), resp.LastPaymentTime)

	events := s.GetPublisher().Events()
	s.Len(events, 2)
	s.Equal(types.WebhookEventPullPaymentExecuted, events[1].EventName)
}

func (s *BillingServiceTestSuite) TestExecuteNotYetDue() {
	terms := s.defaultTerms()
	s.register(terms, "paymentID_1")

	_, err := s.execute("paymentID_1")
	s.Error(err)
	s.True(ierr.IsTiming(err))

	// Failed execution leaves the record untouched
	stored, gerr := s.GetStores().SubRepo.Get(s.GetContext(), s.testData.clientAddr, s.testData.beneficiary)
	s.NoError(gerr)
	s.Equal(terms.RemainingPayments, stored.RemainingPayments)
	s.Equal(terms.StartTime, stored.NextPaymentTime)
}

func (s *BillingServiceTestSuite) TestExecuteCurrencyConversion() {
	// 200 US cents at 2 fiat units per token is 100 tokens
	terms := s.defaultTerms()
	terms.Currency = "USD"
	terms.RecurringAmountCents = 200
	s.register(terms, "paymentID_1")
	s.AdvanceTo(terms.StartTime)

	resp, err := s.execute("paymentID_1")
	s.NoError(err)
	s.True(tokens(100).Equal(resp.AmountTokens))
}

func (s *BillingServiceTestSuite) TestExecuteConversionTruncates() {
	s.NoError(s.GetStores().RateRepo.Set(s.GetContext(), &rate.ExchangeRate{
		Currency: "GBP",
		Rate:     decimal.New(3, types.RateDecimals-2),
	}))

	terms := s.defaultTerms()
	terms.Currency = "GBP"
	terms.RecurringAmountCents = 100
	s.register(terms, "paymentID_1")
	s.AdvanceTo(terms.StartTime)

	resp, err := s.execute("paymentID_1")
	s.NoError(err)
	// 100 cents / 3 fiat-per-token truncates below one third of 100 tokens
	expected := decimal.RequireFromString("33333333333333333333")
	s.True(expected.Equal(resp.AmountTokens), "got %s", resp.AmountTokens)
}

func (s *BillingServiceTestSuite) TestExecuteCatchUpOnePeriodPerCall() {
	terms := s.defaultTerms()
	terms.RemainingPayments = 12
	s.register(terms, "paymentID_1")

	// Far past due: four full periods have elapsed
	s.AdvanceTo(terms.StartTime + 4*terms.FrequencySeconds)

	for i := 0; i < 5; i++ {
		resp, err := s.execute("paymentID_1")
		s.NoError(err, "charge %d", i+1)
		s.Equal(terms.StartTime+uint64(i+1)*terms.FrequencySeconds, resp.NextPaymentTime)
	}

	// The fifth charge consumed the period that became due at exactly now;
	// a sixth is in the future
	_, err := s.execute("paymentID_1")
	s.Error(err)
	s.True(ierr.IsTiming(err))

	balance, berr := s.GetStores().Ledger.BalanceOf(s.GetContext(), s.testData.beneficiary)
	s.NoError(berr)
	s.True(tokens(5000).Equal(balance))
}

func (s *BillingServiceTestSuite) TestExecuteExhaustsRemainingPayments() {
	terms := s.defaultTerms()
	terms.RemainingPayments = 2
	s.register(terms, "paymentID_1")
	s.AdvanceTo(terms.StartTime + 10*terms.FrequencySeconds)

	for i := 0; i < 2; i++ {
		_, err := s.execute("paymentID_1")
		s.NoError(err)
	}

	_, err := s.execute("paymentID_1")
	s.Error(err)
	s.True(ierr.IsTiming(err))
}

func (s *BillingServiceTestSuite) TestExecuteUnknownPairFails() {
	s.register(s.defaultTerms(), "paymentID_1")

	stranger := types.MustParseAddress("0x00000000000000000000000000000000000000ff")
	_, err := s.billingService.ExecutePullPayment(
		s.ContextWithCaller(stranger),
		dto.ExecutePullPaymentRequest{
			Client:    s.testData.clientAddr.String(),
			PaymentID: "paymentID_1",
		},
	)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceTestSuite) TestExecuteByExecutorRelay() {
	terms := s.defaultTerms()
	s.register(terms, "paymentID_1")
	s.AdvanceTo(terms.StartTime)

	resp, err := s.billingService.ExecutePullPayment(
		s.ContextWithCaller(s.testData.executor),
		dto.ExecutePullPaymentRequest{
			Client:    s.testData.clientAddr.String(),
			PaymentID: "paymentID_1",
		},
	)
	s.NoError(err)
	s.Equal(s.testData.beneficiary, resp.Beneficiary)

	balance, berr := s.GetStores().Ledger.BalanceOf(s.GetContext(), s.testData.beneficiary)
	s.NoError(berr)
	s.True(tokens(1000).Equal(balance))
}

func (s *BillingServiceTestSuite) TestExecuteRateUnset() {
	terms := s.defaultTerms()
	terms.Currency = "JPY"
	s.register(terms, "paymentID_1")
	s.AdvanceTo(terms.StartTime)

	_, err := s.execute("paymentID_1")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceTestSuite) TestExecuteTransferFailureLeavesStateUntouched() {
	terms := s.defaultTerms()
	s.register(terms, "paymentID_1")
	s.AdvanceTo(terms.StartTime)

	// Revoke the engine allowance so the charge cannot settle
	s.GetStores().Ledger.Approve(s.testData.clientAddr, decimal.Zero)

	_, err := s.execute("paymentID_1")
	s.Error(err)
	s.True(ierr.IsTransferFailed(err))

	stored, gerr := s.GetStores().SubRepo.Get(s.GetContext(), s.testData.clientAddr, s.testData.beneficiary)
	s.NoError(gerr)
	s.Equal(terms.RemainingPayments, stored.RemainingPayments)
	s.Equal(terms.StartTime, stored.NextPaymentTime)
	s.Zero(stored.LastPaymentTime)

	balance, berr := s.GetStores().Ledger.BalanceOf(s.GetContext(), s.testData.beneficiary)
	s.NoError(berr)
	s.True(balance.IsZero())
}

func (s *BillingServiceTestSuite) TestCancelPullPayment() {
	terms := s.defaultTerms()
	s.register(terms, "paymentID_1")

	resp, err := s.billingService.CancelPullPayment(
		s.ContextWithCaller(s.testData.executor),
		s.cancelRequest("paymentID_1"),
	)
	s.NoError(err)
	s.Equal(s.Now(), resp.CancelTime)

	events := s.GetPublisher().Events()
	s.Len(events, 2)
	s.Equal(types.WebhookEventPullPaymentCancelled, events[1].EventName)
}

func (s *BillingServiceTestSuite) TestCancelRequiresExecutor() {
	s.register(s.defaultTerms(), "paymentID_1")

	_, err := s.billingService.CancelPullPayment(
		s.ContextWithCaller(s.testData.beneficiary),
		s.cancelRequest("paymentID_1"),
	)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *BillingServiceTestSuite) TestCancelConsentMismatch() {
	s.register(s.defaultTerms(), "paymentID_1")

	stranger := testutil.NewSigner()
	req := s.cancelRequest("paymentID_1")
	req.Signature = stranger.SignHex(consent.CancellationMessage("paymentID_1", s.testData.beneficiary))

	_, err := s.billingService.CancelPullPayment(s.ContextWithCaller(s.testData.executor), req)
	s.Error(err)
	s.True(ierr.IsConsentMismatch(err))
}

func (s *BillingServiceTestSuite) TestCancelPaymentIDMismatch() {
	s.register(s.defaultTerms(), "paymentID_1")

	_, err := s.billingService.CancelPullPayment(
		s.ContextWithCaller(s.testData.executor),
		s.cancelRequest("paymentID_2"),
	)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceTestSuite) TestCancelTwiceFails() {
	s.register(s.defaultTerms(), "paymentID_1")

	_, err := s.billingService.CancelPullPayment(
		s.ContextWithCaller(s.testData.executor),
		s.cancelRequest("paymentID_1"),
	)
	s.NoError(err)

	_, err = s.billingService.CancelPullPayment(
		s.ContextWithCaller(s.testData.executor),
		s.cancelRequest("paymentID_1"),
	)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *BillingServiceTestSuite) TestCancelGracePeriod() {
	terms := s.defaultTerms()
	s.register(terms, "paymentID_1")

	// One period became due before cancellation
	s.AdvanceTo(terms.StartTime + 1)
	_, err := s.billingService.CancelPullPayment(
		s.ContextWithCaller(s.testData.executor),
		s.cancelRequest("paymentID_1"),
	)
	s.NoError(err)

	// The overdue period is still chargeable after cancellation
	resp, err := s.execute("paymentID_1")
	s.NoError(err)
	s.True(tokens(1000).Equal(resp.AmountTokens))

	// Later periods are not, even once their time arrives
	s.AdvanceTo(terms.StartTime + 2*terms.FrequencySeconds)
	_, err = s.execute("paymentID_1")
	s.Error(err)
	s.True(ierr.IsTiming(err))
}

func (s *BillingServiceTestSuite) TestGetPullPayment() {
	s.register(s.defaultTerms(), "paymentID_1")

	resp, err := s.billingService.GetPullPayment(s.GetContext(), s.testData.clientAddr, s.testData.beneficiary)
	s.NoError(err)
	s.Equal("paymentID_1", resp.PaymentID)

	_, err = s.billingService.GetPullPayment(s.GetContext(), s.testData.clientAddr, s.testData.executor)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceTestSuite) TestGetBalance() {
	resp, err := s.billingService.GetBalance(s.GetContext(), s.testData.clientAddr)
	s.NoError(err)
	s.True(tokens(10_000).Equal(resp.Balance))

	empty, err := s.billingService.GetBalance(s.GetContext(), s.testData.beneficiary)
	s.NoError(err)
	s.True(empty.Balance.IsZero())
}
