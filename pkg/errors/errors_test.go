package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeArchiveNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeSearchUnavailable, http.StatusServiceUnavailable},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeInternalError, http.StatusInternalServerError},
		{CodeIndexingFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, New(tt.code, "x").HTTPStatus)
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeSearchUnavailable, "similarity search failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "4003")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsAppError(t *testing.T) {
	t.Run("passes app errors through", func(t *testing.T) {
		original := New(CodeArchiveNotFound, "archive not found")
		assert.Same(t, original, AsAppError(original))
	})

	t.Run("wraps unknown errors", func(t *testing.T) {
		err := AsAppError(errors.New("boom"))
		require.NotNil(t, err)
		assert.Equal(t, CodeUnknown, err.Code)
		assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	})
}

func TestWithDetail(t *testing.T) {
	err := New(CodeInvalidParam, "unknown media type").WithDetail("hologram")
	assert.Equal(t, "hologram", err.Detail)
}
