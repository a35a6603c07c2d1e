package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthenticated("No token"), http.StatusUnauthorized},
		{InvalidCredentials(), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{QuotaExceeded("full"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Internal(errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Kind.Status())
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create note: %w", QuotaExceeded("full"))

	assert.Equal(t, KindQuotaExceeded, KindOf(err))
	assert.True(t, Is(err, KindQuotaExceeded))
	assert.Equal(t, "full", Message(err))
}

func TestMessageHidesInternals(t *testing.T) {
	cause := errors.New("pq: connection refused")

	assert.Equal(t, "Internal server error", Message(cause))
	assert.Equal(t, "Internal server error", Message(Internal(cause)))
	assert.ErrorIs(t, Internal(cause), cause)
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.False(t, Is(nil, KindInternal))
}
