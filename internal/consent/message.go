package consent

import (
	"github.com/pullbill/pullbill/internal/types"
	"golang.org/x/crypto/sha3"
)

// The consent message is the keccak-256 digest of the tightly packed,
// ordered field encoding the client's wallet signs. Only economically
// meaningful terms are packed: merchant id, client address and (for
// registration) payment id are relayed unsigned and checked separately
// by the billing engine.

// RegistrationTerms are the signed fields of a registration consent,
// in canonical order.
type RegistrationTerms struct {
	Beneficiary          types.Address
	Currency             string
	InitialAmountCents   uint64
	RecurringAmountCents uint64
	FrequencySeconds     uint64
	RemainingPayments    uint64
	StartTime            uint64
}

// RegistrationMessage returns the 32-byte digest a client signs to
// authorize a registration.
func RegistrationMessage(terms RegistrationTerms) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(terms.Beneficiary.Bytes())
	h.Write([]byte(terms.Currency))
	h.Write(uint256(terms.InitialAmountCents))
	h.Write(uint256(terms.RecurringAmountCents))
	h.Write(uint256(terms.FrequencySeconds))
	h.Write(uint256(terms.RemainingPayments))
	h.Write(uint256(terms.StartTime))

	var digest [32]byte
	h.Sum(digest[:0])
	return digest
}

// CancellationMessage returns the 32-byte digest a client signs to
// authorize a cancellation.
func CancellationMessage(paymentID string, beneficiary types.Address) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(paymentID))
	h.Write(beneficiary.Bytes())

	var digest [32]byte
	h.Sum(digest[:0])
	return digest
}

// uint256 encodes v as a 32-byte big-endian word, matching the packed
// encoding of unsigned integers in the wallet signer.
func uint256(v uint64) []byte {
	var word [32]byte
	for i := 0; i < 8; i++ {
		word[31-i] = byte(v >> (8 * i))
	}
	return word[:]
}
