package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusBadRequest},
		{BadID("x"), http.StatusBadRequest},
		{Auth("x"), http.StatusUnauthorized},
		{NotFound("x"), http.StatusNotFound},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Kind.String())
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := fmt.Errorf("loading cart: %w", NotFound("Item not found"))

	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Item not found", MessageOf(err))
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("socket closed")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.Equal(t, "internal server error", MessageOf(Internal(err)))
	assert.ErrorIs(t, Internal(err), err)
}
