package memory

import (
	"context"
	"testing"

	"github.com/pullbill/pullbill/internal/domain/subscription"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testClient      = types.MustParseAddress("0x0000000000000000000000000000000000000c01")
	testBeneficiary = types.MustParseAddress("0x0000000000000000000000000000000000000b01")
)

func testSubscription() *subscription.Subscription {
	return &subscription.Subscription{
		Client:               testClient,
		Beneficiary:          testBeneficiary,
		PaymentID:            "paymentID_1",
		Currency:             "EUR",
		RecurringAmountCents: 1000,
		FrequencySeconds:     2592000,
		RemainingPayments:    12,
		StartTime:            1700000000,
		NextPaymentTime:      1700000000,
	}
}

func TestSubscriptionStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewSubscriptionStore()
	require.NoError(t, store.Upsert(ctx, testSubscription()))

	got, err := store.Get(ctx, testClient, testBeneficiary)
	require.NoError(t, err)

	// Mutating the copy must not touch the stored record until Update
	got.RemainingPayments = 0
	got.CancelTime = 42

	again, err := store.Get(ctx, testClient, testBeneficiary)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), again.RemainingPayments)
	assert.Zero(t, again.CancelTime)

	require.NoError(t, store.Update(ctx, got))
	final, err := store.Get(ctx, testClient, testBeneficiary)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), final.CancelTime)
}

func TestSubscriptionStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewSubscriptionStore()
	require.NoError(t, store.Upsert(ctx, testSubscription()))

	replacement := testSubscription()
	replacement.PaymentID = "paymentID_2"
	replacement.RecurringAmountCents = 500
	require.NoError(t, store.Upsert(ctx, replacement))

	got, err := store.Get(ctx, testClient, testBeneficiary)
	require.NoError(t, err)
	assert.Equal(t, "paymentID_2", got.PaymentID)

	subs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscriptionStoreUpdateMissing(t *testing.T) {
	store := NewSubscriptionStore()
	err := store.Update(context.Background(), testSubscription())
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestRateStoreGetUnset(t *testing.T) {
	store := NewRateStore()
	_, err := store.Get(context.Background(), "USD")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestLedgerTransferFrom(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerStore()

	ledger.Mint(testClient, decimal.NewFromInt(100))
	ledger.Approve(testClient, decimal.NewFromInt(60))

	require.NoError(t, ledger.TransferFrom(ctx, testClient, testBeneficiary, decimal.NewFromInt(40)))

	balance, err := ledger.BalanceOf(ctx, testBeneficiary)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(balance))
	assert.True(t, decimal.NewFromInt(20).Equal(ledger.Allowance(testClient)))

	// Allowance exhausted before balance
	err = ledger.TransferFrom(ctx, testClient, testBeneficiary, decimal.NewFromInt(30))
	require.Error(t, err)
	assert.True(t, ierr.IsTransferFailed(err))

	// Balance exhausted even with allowance
	ledger.Approve(testClient, decimal.NewFromInt(1000))
	err = ledger.TransferFrom(ctx, testClient, testBeneficiary, decimal.NewFromInt(61))
	require.Error(t, err)
	assert.True(t, ierr.IsTransferFailed(err))
}
