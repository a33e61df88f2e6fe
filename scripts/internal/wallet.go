package internal

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pullbill/pullbill/internal/consent"
	"github.com/pullbill/pullbill/internal/types"
	"golang.org/x/crypto/sha3"
)

// GenerateWallet prints a fresh client keypair and its account address.
func GenerateWallet() error {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return err
	}

	fmt.Println("Private key (hex):", hex.EncodeToString(key.Serialize()))
	fmt.Println("Address:          ", keyAddress(key))
	return nil
}

// SignRegistrationConsent signs registration terms read from the
// environment and prints the wire-format signature.
//
// Required: PULLBILL_SIGNER_KEY, PULLBILL_BENEFICIARY, PULLBILL_CURRENCY,
// PULLBILL_RECURRING_CENTS, PULLBILL_FREQUENCY_SECONDS,
// PULLBILL_REMAINING_PAYMENTS, PULLBILL_START_TIME.
// Optional: PULLBILL_INITIAL_CENTS.
func SignRegistrationConsent() error {
	key, err := signerKey()
	if err != nil {
		return err
	}

	beneficiary, ok := types.ParseAddress(os.Getenv("PULLBILL_BENEFICIARY"))
	if !ok {
		return fmt.Errorf("PULLBILL_BENEFICIARY is not a valid address")
	}

	terms := consent.RegistrationTerms{
		Beneficiary: beneficiary,
		Currency:    os.Getenv("PULLBILL_CURRENCY"),
	}
	if terms.InitialAmountCents, err = envUint("PULLBILL_INITIAL_CENTS", true); err != nil {
		return err
	}
	if terms.RecurringAmountCents, err = envUint("PULLBILL_RECURRING_CENTS", false); err != nil {
		return err
	}
	if terms.FrequencySeconds, err = envUint("PULLBILL_FREQUENCY_SECONDS", false); err != nil {
		return err
	}
	if terms.RemainingPayments, err = envUint("PULLBILL_REMAINING_PAYMENTS", false); err != nil {
		return err
	}
	if terms.StartTime, err = envUint("PULLBILL_START_TIME", false); err != nil {
		return err
	}

	printSignature(key, consent.RegistrationMessage(terms))
	return nil
}

// SignCancellationConsent signs a cancellation consent read from the
// environment and prints the wire-format signature.
//
// Required: PULLBILL_SIGNER_KEY, PULLBILL_PAYMENT_ID, PULLBILL_BENEFICIARY.
func SignCancellationConsent() error {
	key, err := signerKey()
	if err != nil {
		return err
	}

	paymentID := os.Getenv("PULLBILL_PAYMENT_ID")
	if paymentID == "" {
		return fmt.Errorf("PULLBILL_PAYMENT_ID is required")
	}
	beneficiary, ok := types.ParseAddress(os.Getenv("PULLBILL_BENEFICIARY"))
	if !ok {
		return fmt.Errorf("PULLBILL_BENEFICIARY is not a valid address")
	}

	printSignature(key, consent.CancellationMessage(paymentID, beneficiary))
	return nil
}

func signerKey() (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(os.Getenv("PULLBILL_SIGNER_KEY"))
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("PULLBILL_SIGNER_KEY must be 32 hex-encoded bytes")
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

func envUint(name string, optional bool) (uint64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		if optional {
			return 0, nil
		}
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid unsigned integer: %w", name, err)
	}
	return v, nil
}

func printSignature(key *secp256k1.PrivateKey, digest [32]byte) {
	compact := ecdsa.SignCompact(key, digest[:], false)

	var sig types.Signature
	sig.V = compact[0]
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:65])

	fmt.Println("Signer:   ", keyAddress(key))
	fmt.Println("Digest:    0x" + hex.EncodeToString(digest[:]))
	fmt.Println("Signature:", sig.String())
}

func keyAddress(key *secp256k1.PrivateKey) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(key.PubKey().SerializeUncompressed()[1:])
	return types.BytesToAddress(h.Sum(nil)[12:]).String()
}
