package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/duespay/internal/storage"
)

// Kind classifies an error for the caller.
type Kind string

const (
	KindUnauthorized Kind = "Unauthorized"
	KindNotFound     Kind = "NotFound"
	KindInvalidInput Kind = "InvalidInput"
	KindBusinessRule Kind = "BusinessRuleViolation"
	KindConflict     Kind = "Conflict"
	KindInternal     Kind = "Internal"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrUnauthorized = errors.New("ledger: unauthorized")
	ErrInvalidInput = errors.New("ledger: invalid input")

	// Lookup errors
	ErrBillNotFound    = errors.New("ledger: bill not found")
	ErrPaymentNotFound = errors.New("ledger: payment not found")
	ErrUserNotFound    = errors.New("ledger: user not found")

	// Payment rules
	ErrAmountExceedsRemaining = errors.New("ledger: amount exceeds remaining balance")
	ErrInstallmentLimit       = errors.New("ledger: installment limit reached")
	ErrDuplicateInstallment   = errors.New("ledger: duplicate installment slot")

	// User rules
	ErrEmailInUse = errors.New("ledger: email already in use")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("ledger: validation failed for %s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// BalanceError reports a payment larger than what is left on the bill.
// It matches ErrAmountExceedsRemaining.
type BalanceError struct {
	Requested int64
	Remaining int64
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("ledger: amount exceeds remaining balance (requested %d, remaining %d)", e.Requested, e.Remaining)
}

func (e *BalanceError) Is(target error) bool {
	return target == ErrAmountExceedsRemaining
}

// KindOf classifies err. Unknown errors are Internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case IsNotFound(err):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrAmountExceedsRemaining),
		errors.Is(err, ErrInstallmentLimit),
		errors.Is(err, ErrDuplicateInstallment),
		errors.Is(err, ErrEmailInUse):
		return KindBusinessRule
	case errors.Is(err, storage.ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, storage.ErrNotFound)
}
