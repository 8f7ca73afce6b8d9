package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := NewNetworkError(fmt.Errorf("dial tcp: timeout"))
	wrapped := fmt.Errorf("lookup failed: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrNetwork))
	assert.False(t, stderrors.Is(wrapped, ErrProfileNotFound))
	assert.Equal(t, "network error: dial tcp: timeout", err.Error())
}

func TestAppError_UnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("database is locked")
	err := NewStorageError("save", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeStorageError, CodeOf(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewUnsupportedFormatError("txt"), http.StatusBadRequest},
		{NewEmptyUsernameError(), http.StatusBadRequest},
		{NewCorruptDocumentError("pdf", fmt.Errorf("bad xref")), http.StatusUnprocessableEntity},
		{NewProfileNotFoundError("ghost", 404), http.StatusNotFound},
		{NewNetworkError(fmt.Errorf("timeout")), http.StatusBadGateway},
		{NewStorageError("read", fmt.Errorf("locked")), http.StatusServiceUnavailable},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
