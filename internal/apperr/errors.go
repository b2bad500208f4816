package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation")
	ErrConflict       = errors.New("already exists")
	ErrAuthentication = errors.New("unauthorized")
	ErrAuthorization  = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConfiguration  = errors.New("configuration error")
	ErrInternal       = errors.New("internal error")

	// Same message for unknown email and wrong password.
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrAuthentication)
	ErrInvalidToken       = fmt.Errorf("invalid token: %w", ErrAuthentication)

	ErrGenerationTimeout     = errors.New("generation timed out")
	ErrGenerationService     = errors.New("generation service error")
	ErrGenerationEmpty       = errors.New("generation returned an empty response")
	ErrGenerationMalformed   = errors.New("generation returned malformed output")
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

// Error carries a message that is safe to show to the client.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Validation(msg string) error { return New(ErrValidation, msg) }
