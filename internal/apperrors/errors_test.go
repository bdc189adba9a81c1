package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "wrapped validation", err: fmt.Errorf("%w: amount", apperrors.ErrValidation), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("txn_1: %w", apperrors.ErrNotFound), want: http.StatusNotFound},
		{name: "duplicate", err: apperrors.ErrDuplicate, want: http.StatusConflict},
		{name: "unauthorized", err: apperrors.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "forbidden", err: apperrors.ErrForbidden, want: http.StatusForbidden},
		{name: "persistence", err: fmt.Errorf("%w: disk full", apperrors.ErrPersistence), want: http.StatusServiceUnavailable},
		{name: "app error wins", err: apperrors.NewGatewayTimeoutError("upstream"), want: http.StatusGatewayTimeout},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.HTTPStatus(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := apperrors.NewConflictError("email already registered")
	assert.True(t, errors.Is(err, apperrors.ErrDuplicate))
	assert.Equal(t, "email already registered: resource already exists", err.Error())
}
