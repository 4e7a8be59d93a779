package apperror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"task-manager-api/internal/apperror"
)

func TestDeclaredConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperror.Error
		status int
	}{
		{"not found", apperror.NotFound("task not found"), http.StatusNotFound},
		{"unauthorized", apperror.Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{"conflict", apperror.Conflict("username already exists"), http.StatusConflict},
		{"too many requests", apperror.TooManyRequests("slow down"), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.err.Message, tt.err.Error())
			assert.Nil(t, tt.err.Unwrap())
		})
	}
}

func TestWrap_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperror.Wrap(http.StatusServiceUnavailable, "database unavailable", cause)

	assert.Equal(t, "database unavailable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
