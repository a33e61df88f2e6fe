package consent

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
	"golang.org/x/crypto/sha3"
)

// compactSigRecoveryOffset is the recovery-id base of the compact
// signature format understood by the secp256k1 library.
const compactSigRecoveryOffset = 27

// Recover returns the account whose private key produced sig over the
// given 32-byte digest. It is a pure function with no engine state; the
// billing engine compares the result against the declared client.
func Recover(digest [32]byte, sig types.Signature) (types.Address, error) {
	v := sig.V
	// Wallets emit either a raw recovery id (0/1) or its offset form (27/28).
	if v < compactSigRecoveryOffset {
		v += compactSigRecoveryOffset
	}
	if v != 27 && v != 28 {
		return types.ZeroAddress, ierr.NewError("invalid recovery identifier").
			WithHintf("Signature v must be 0, 1, 27 or 28, got %d", sig.V).
			Mark(ierr.ErrInvalidSignature)
	}

	// The library's compact layout leads with the recovery byte.
	compact := make([]byte, 65)
	compact[0] = v
	copy(compact[1:33], sig.R[:])
	copy(compact[33:65], sig.S[:])

	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return types.ZeroAddress, ierr.WithError(err).
			WithHint("Signature does not recover to a valid public key").
			Mark(ierr.ErrInvalidSignature)
	}

	addr := pubkeyToAddress(pub)
	if addr.IsZero() {
		return types.ZeroAddress, ierr.NewError("signature recovered to the zero address").
			Mark(ierr.ErrInvalidSignature)
	}
	return addr, nil
}

// pubkeyToAddress derives the 20-byte account address as the trailing
// bytes of the keccak-256 hash of the uncompressed public key point.
func pubkeyToAddress(pub *secp256k1.PublicKey) types.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub.SerializeUncompressed()[1:])
	return types.BytesToAddress(h.Sum(nil)[12:])
}
