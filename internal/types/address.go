package types

import (
	"encoding/hex"
	"errors"
	"strings"
)

// ErrMalformedAddress is returned when a hex address fails to parse.
var ErrMalformedAddress = errors.New("malformed address")

// AddressLength is the length of an account address in bytes.
const AddressLength = 20

// Address is a 20-byte account identifier on the token ledger.
// It is comparable and usable as a map key.
type Address [AddressLength]byte

// ZeroAddress is the null-account sentinel. It is never a valid
// client, beneficiary or executor.
var ZeroAddress = Address{}

// ParseAddress parses a 0x-prefixed (or bare) hex string into an Address.
func ParseAddress(s string) (Address, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != AddressLength*2 {
		return Address{}, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, false
	}
	var a Address
	copy(a[:], b)
	return a, true
}

// MustParseAddress is a test and fixture helper that panics on malformed input.
func MustParseAddress(s string) Address {
	a, ok := ParseAddress(s)
	if !ok {
		panic("types: malformed address: " + s)
	}
	return a
}

// BytesToAddress left-truncates b to the rightmost 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == ZeroAddress }

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler so addresses serialize as
// hex strings in JSON payloads and map keys.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, ok := ParseAddress(string(text))
	if !ok {
		return ErrMalformedAddress
	}
	*a = parsed
	return nil
}
