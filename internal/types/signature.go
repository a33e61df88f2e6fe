package types

import (
	"encoding/hex"
	"strings"
)

// Signature is a detached secp256k1 signature in (v, r, s) form, as produced
// by wallet-side signing of a consent message hash. R and S are 32-byte
// big-endian scalars; V is the recovery identifier (27 or 28, or 0/1).
type Signature struct {
	V uint8    `json:"v"`
	R [32]byte `json:"-"`
	S [32]byte `json:"-"`
}

// ParseSignature decodes the wallet wire format: 65 hex-encoded bytes laid
// out as r || s || v, optionally 0x-prefixed.
func ParseSignature(s string) (Signature, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != 130 {
		return Signature{}, false
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Signature{}, false
	}
	var sig Signature
	copy(sig.R[:], raw[0:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	return sig, true
}

// Compact returns the signature as the 65-byte r || s || v layout.
func (s Signature) Compact() []byte {
	out := make([]byte, 65)
	copy(out[0:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

func (s Signature) String() string {
	return "0x" + hex.EncodeToString(s.Compact())
}
