package testutil

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pullbill/pullbill/internal/types"
	"golang.org/x/crypto/sha3"
)

// Signer is a wallet stand-in for tests: it holds a secp256k1 key and
// produces consent signatures in the wire format the engine accepts.
type Signer struct {
	key *secp256k1.PrivateKey
}

func NewSigner() *Signer {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		panic(err)
	}
	return &Signer{key: key}
}

// Address returns the account address derived from the signer's public key.
func (s *Signer) Address() types.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(s.key.PubKey().SerializeUncompressed()[1:])
	return types.BytesToAddress(h.Sum(nil)[12:])
}

// Sign produces a recoverable signature over a consent digest.
func (s *Signer) Sign(digest [32]byte) types.Signature {
	compact := ecdsa.SignCompact(s.key, digest[:], false)

	var sig types.Signature
	sig.V = compact[0]
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:65])
	return sig
}

// SignHex signs a digest and returns the r || s || v hex wire form.
func (s *Signer) SignHex(digest [32]byte) string {
	return s.Sign(digest).String()
}
