package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tiplinehq/tipline/internal/service"
	"github.com/tiplinehq/tipline/internal/store"
	"github.com/tiplinehq/tipline/internal/token"
	"github.com/tiplinehq/tipline/internal/upload"
	"github.com/tiplinehq/tipline/internal/validate"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrContextNotFound, http.StatusNotFound},
		{service.ErrNoRecipients, http.StatusBadRequest},
		{service.ErrTipNotFound, http.StatusNotFound},
		{token.ErrInvalidToken, http.StatusForbidden},
		{validate.ErrMissingKey, http.StatusBadRequest},
		{upload.ErrUnknownFlow, http.StatusBadRequest},
		{&upload.ErrFileTooBig{LimitMB: 10}, http.StatusRequestEntityTooLarge},
		{store.ErrExecutingQuery, http.StatusInternalServerError},
		{fmt.Errorf("unmapped"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFromError(tt.err), "error %v", tt.err)
	}
}

func TestStatusFromError_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("context lookup failed: %w", store.ErrContextNotFound)
	assert.Equal(t, http.StatusNotFound, statusFromError(wrapped))
}
