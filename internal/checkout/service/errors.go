package service

import (
	"errors"
	"fmt"
)

var ErrIllegalTransition = errors.New("illegal transition of checkout status")

// Fields reported by ValidationError.
const (
	FieldCart          = "cart"
	FieldShipping      = "shipping"
	FieldPaymentMethod = "paymentMethod"
	FieldInstallments  = "installments"
)

// ValidationError blocks a submission. It names the first field that failed
// and carries the message shown to the user; it is always recoverable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
