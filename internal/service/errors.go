package service

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUserDisabled = errors.New("account is disabled")
)

// ValidationError carries the individual failures of an input validation
// pass. Handlers surface it as a 400 with the errors list in the envelope.
type ValidationError struct {
	Message string
	Errors  []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

func validationFailed(message string, errs []string) error {
	return &ValidationError{Message: message, Errors: errs}
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
