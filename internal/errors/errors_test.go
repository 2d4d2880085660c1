package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := NewAppError(TypeValidation, "bad input", nil)

		assert.Equal(t, "VALIDATION: bad input", err.Error())
	})

	t.Run("with underlying error", func(t *testing.T) {
		err := NewAppError(TypeProvider, "call failed", errors.New("boom"))

		assert.Equal(t, "PROVIDER: call failed (boom)", err.Error())
	})
}

func TestAppError_IsMatchesWrappedSentinel(t *testing.T) {
	// Arrange
	wrapped := ErrProviderFailure.WithError(errors.New("rate limited")).WithContext("model", "x")
	outer := fmt.Errorf("enhance: %w", wrapped)

	// Assert
	assert.ErrorIs(t, outer, ErrProviderFailure)
	assert.NotErrorIs(t, outer, ErrNotAuthenticated)
}

func TestAppError_UserMessage(t *testing.T) {
	t.Run("provider failure passes the cause through", func(t *testing.T) {
		err := ErrProviderFailure.WithError(errors.New("rate limited"))

		assert.Equal(t, "rate limited", err.UserMessage())
	})

	t.Run("other types use the message", func(t *testing.T) {
		assert.Equal(t, "Please sign in to use AI enhancement", ErrNotAuthenticated.UserMessage())
	})
}

func TestAppError_WithContextDoesNotMutateOriginal(t *testing.T) {
	base := NewAppError(TypeInternal, "x", nil)

	derived := base.WithContext("k", "v")

	assert.Nil(t, base.Context)
	assert.Equal(t, "v", derived.Context["k"])
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrPersistence.WithError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Local store operation failed", err.Message)
	assert.NotEmpty(t, ErrAPIKeyMissing.Suggestion)
}
