// internal/apperror/errors_test.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeInvalidAmount:    http.StatusBadRequest,
		ErrCodeSelfPurchase:     http.StatusBadRequest,
		ErrCodeMalformedPayload: http.StatusBadRequest,
		ErrCodeInvalidSignature: http.StatusUnauthorized,
		ErrCodeForbidden:        http.StatusForbidden,
		ErrCodeNotFound:         http.StatusNotFound,
		ErrCodeNotAvailable:     http.StatusConflict,
		ErrCodeConflict:         http.StatusConflict,
		ErrCodeNotReady:         http.StatusConflict,
		ErrCodeRateLimited:      http.StatusTooManyRequests,
		ErrCodeInternal:         http.StatusInternalServerError,
	}

	for code, want := range cases {
		assert.Equal(t, want, New(code, "test").HTTPStatus, "code %s", code)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer context: %w", ErrListingNotAvailable)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotAvailable, appErr.Code)

	assert.True(t, Is(wrapped, ErrCodeNotAvailable))
	assert.False(t, Is(wrapped, ErrCodeNotFound))
}

func TestAsPlainError(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeInternal, "database unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "database unavailable")
}
