package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_KeepsKindAndMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("register: %w", Validation("password is too short"))

	assert.ErrorIs(t, err, ErrValidation)
	var ae *Error
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, "password is too short", ae.Msg)
}

func TestInvalidCredentials_IsAuthentication(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrInvalidCredentials, ErrAuthentication)
	assert.ErrorIs(t, ErrInvalidToken, ErrAuthentication)
	assert.NotErrorIs(t, ErrInvalidToken, ErrInvalidCredentials)
}
