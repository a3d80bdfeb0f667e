package nft

import (
	"errors"
	"fmt"
)

var (
	ErrSupplyExceeded      = errors.New("max supply exceeded")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrNonexistentToken    = errors.New("nonexistent token")
	ErrUnauthorized        = errors.New("caller is not the owner")
	ErrAlreadyInitialized  = errors.New("contract already initialized")
	ErrNotInitialized      = errors.New("contract not initialized")
	ErrInvalidRoyalty      = errors.New("royalty percentage must be between 0 and 100")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrIncompatibleLayout  = errors.New("incompatible storage layout")
	ErrUnknownLogic        = errors.New("unknown logic version")
)

// CallError is returned for every rejected contract call. It unwraps to
// one of the sentinels above.
type CallError struct {
	Op     string
	Caller Address
	Err    error
}

// Error implements error.
func (e *CallError) Error() string {
	if e.Caller.Equals(ZeroAddress) {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (caller %s): %v", e.Op, FormatAddress(e.Caller), e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

func reject(op string, caller Address, err error) error {
	return &CallError{Op: op, Caller: caller, Err: err}
}

// Reason returns a short label for err, used for metrics and API bodies.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSupplyExceeded):
		return "supply_exceeded"
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ErrNonexistentToken):
		return "nonexistent_token"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrInvalidRoyalty):
		return "invalid_royalty"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrIncompatibleLayout):
		return "incompatible_layout"
	case errors.Is(err, ErrUnknownLogic):
		return "unknown_logic"
	default:
		return "internal"
	}
}
