// Package apperrors is the error taxonomy shared by the ledger services and
// their clients. Classify with errors.Is; the Code values travel over HTTP so
// a client can rebuild the same sentinel on its side of the wire.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidPin          = fmt.Errorf("%w: invalid pin", ErrUnauthorized)
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	ErrDependencyFailure   = errors.New("dependency failure")
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidPin          = "INVALID_PIN"
	CodeSameAccountTransfer = "SAME_ACCOUNT_TRANSFER"
	CodeDependencyFailure   = "DEPENDENCY_FAILURE"
	CodeInternal            = "INTERNAL_ERROR"
)

// Code returns the wire code for err. ErrInvalidPin is checked before
// ErrUnauthorized because it wraps it.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrSameAccountTransfer):
		return CodeSameAccountTransfer
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidPin):
		return CodeInvalidPin
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrDependencyFailure):
		return CodeDependencyFailure
	default:
		return CodeInternal
	}
}

// FromCode maps a wire code back to its sentinel. Unknown codes yield nil.
func FromCode(code string) error {
	switch code {
	case CodeNotFound:
		return ErrNotFound
	case CodeValidation:
		return ErrValidation
	case CodeInsufficientFunds:
		return ErrInsufficientFunds
	case CodeUnauthorized:
		return ErrUnauthorized
	case CodeInvalidPin:
		return ErrInvalidPin
	case CodeSameAccountTransfer:
		return ErrSameAccountTransfer
	case CodeDependencyFailure:
		return ErrDependencyFailure
	}
	return nil
}

func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
