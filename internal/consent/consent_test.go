package consent

import (
	"testing"

	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/testutil"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTerms(beneficiary types.Address) RegistrationTerms {
	return RegistrationTerms{
		Beneficiary:          beneficiary,
		Currency:             "EUR",
		InitialAmountCents:   1000,
		RecurringAmountCents: 1000,
		FrequencySeconds:     2592000,
		RemainingPayments:    12,
		StartTime:            1700000000,
	}
}

func TestRegistrationMessageDeterministic(t *testing.T) {
	beneficiary := types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0")

	d1 := RegistrationMessage(defaultTerms(beneficiary))
	d2 := RegistrationMessage(defaultTerms(beneficiary))
	assert.Equal(t, d1, d2)
}

func TestRegistrationMessageBindsEveryTerm(t *testing.T) {
	beneficiary := types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0")
	base := RegistrationMessage(defaultTerms(beneficiary))

	mutations := map[string]func(*RegistrationTerms){
		"beneficiary": func(terms *RegistrationTerms) {
			terms.Beneficiary = types.MustParseAddress("0x00000000000000000000000000000000000000ff")
		},
		"currency":  func(terms *RegistrationTerms) { terms.Currency = "USD" },
		"initial":   func(terms *RegistrationTerms) { terms.InitialAmountCents = 999 },
		"recurring": func(terms *RegistrationTerms) { terms.RecurringAmountCents = 999 },
		"frequency": func(terms *RegistrationTerms) { terms.FrequencySeconds = 60 },
		"remaining": func(terms *RegistrationTerms) { terms.RemainingPayments = 1 },
		"start":     func(terms *RegistrationTerms) { terms.StartTime = 1 },
	}

	for name, mutate := range mutations {
		terms := defaultTerms(beneficiary)
		mutate(&terms)
		assert.NotEqual(t, base, RegistrationMessage(terms), "field %s not bound", name)
	}
}

func TestCancellationMessageBindsPaymentAndBeneficiary(t *testing.T) {
	beneficiary := types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0")
	other := types.MustParseAddress("0x00000000000000000000000000000000000000ff")

	base := CancellationMessage("paymentID_1", beneficiary)
	assert.NotEqual(t, base, CancellationMessage("paymentID_2", beneficiary))
	assert.NotEqual(t, base, CancellationMessage("paymentID_1", other))
}

func TestRecoverRoundtrip(t *testing.T) {
	signer := testutil.NewSigner()
	digest := RegistrationMessage(defaultTerms(types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0")))

	recovered, err := Recover(digest, signer.Sign(digest))
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestRecoverNormalizesRecoveryID(t *testing.T) {
	signer := testutil.NewSigner()
	digest := CancellationMessage("paymentID_1", types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0"))

	sig := signer.Sign(digest)
	require.True(t, sig.V == 27 || sig.V == 28)

	// The raw 0/1 form recovers identically
	sig.V -= 27
	recovered, err := Recover(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestRecoverWrongDigestYieldsDifferentSigner(t *testing.T) {
	signer := testutil.NewSigner()
	beneficiary := types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0")

	digest := CancellationMessage("paymentID_1", beneficiary)
	other := CancellationMessage("paymentID_2", beneficiary)

	recovered, err := Recover(other, signer.Sign(digest))
	if err == nil {
		assert.NotEqual(t, signer.Address(), recovered)
	}
}

func TestRecoverInvalidRecoveryID(t *testing.T) {
	signer := testutil.NewSigner()
	digest := CancellationMessage("paymentID_1", types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0"))

	sig := signer.Sign(digest)
	sig.V = 29

	_, err := Recover(digest, sig)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidSignature(err))
}

func TestRecoverGarbageScalars(t *testing.T) {
	digest := CancellationMessage("paymentID_1", types.MustParseAddress("0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0"))

	var sig types.Signature
	sig.V = 27
	// All-zero r and s can never recover a valid key

	_, err := Recover(digest, sig)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidSignature(err))
}
