package nft

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
)

// NativeDecimals is the precision of the native currency amounts.
const NativeDecimals = 18

// mintPrice is 0.01 native units.
var mintPrice = new(big.Int).Exp(big.NewInt(10), big.NewInt(NativeDecimals-2), nil)

// MintPrice returns the public mint price in base units.
func MintPrice() *big.Int {
	return new(big.Int).Set(mintPrice)
}

// checkPayment validates a public mint payment. A nil payment is zero.
func checkPayment(payment *big.Int) (*big.Int, error) {
	if payment == nil {
		payment = new(big.Int)
	}
	if payment.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if payment.Cmp(mintPrice) < 0 {
		return nil, ErrInsufficientPayment
	}
	return payment, nil
}

// collect retains the whole payment, overpayment included.
func collect(s *State, payment *big.Int) {
	if s.Proceeds == nil {
		s.Proceeds = new(big.Int)
	}
	s.Proceeds.Add(s.Proceeds, payment)
}

// ParseNative parses a decimal amount such as "0.01" into base units.
func ParseNative(s string) (*big.Int, error) {
	v, err := fixedn.FromString(s, NativeDecimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// FormatNative prints base units as a decimal amount.
func FormatNative(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return fixedn.ToString(v, NativeDecimals)
}
