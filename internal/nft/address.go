package nft

import (
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Address identifies an account or contract by its script hash.
type Address = util.Uint160

// ZeroAddress is the unset account.
var ZeroAddress Address

// FormatAddress prints a in Neo N3 address form.
func FormatAddress(a Address) string {
	return address.Uint160ToString(a)
}

// ParseAddress accepts an N3 address or a little-endian script hash
// (with or without 0x).
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ZeroAddress, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if a, err := address.StringToUint160(s); err == nil {
		return a, nil
	}
	a, err := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return ZeroAddress, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return a, nil
}
