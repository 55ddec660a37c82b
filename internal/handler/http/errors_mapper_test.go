package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlevkov/go-fin-keeper/internal/service"
	"github.com/mlevkov/go-fin-keeper/internal/store"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", service.ErrValidationInvalidKind, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: date", service.ErrValidationMissingFields), http.StatusBadRequest},
		{"conflict", store.ErrEmailAlreadyExists, http.StatusConflict},
		{"not found", store.ErrEntryNotFound, http.StatusNotFound},
		{"bad token", service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
		{"storage failure", store.ErrExecutingQuery, http.StatusInternalServerError},
		{"unmapped", fmt.Errorf("some internal failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "bare validation sentinel",
			err:  service.ErrValidationInvalidKind,
			want: service.ErrValidationInvalidKind.Error(),
		},
		{
			name: "annotated missing fields keep the field list",
			err:  fmt.Errorf("%w: amount, date", service.ErrValidationMissingFields),
			want: "required fields are missing: amount, date",
		},
		{
			name: "annotated bad date keeps the hint",
			err:  fmt.Errorf("%w: date must use YYYY-MM-DD", service.ErrInvalidDataProvided),
			want: "invalid data provided: date must use YYYY-MM-DD",
		},
		{
			name: "unauthorized collapses to status text",
			err:  service.ErrTokenIsExpiredOrInvalid,
			want: http.StatusText(http.StatusUnauthorized),
		},
		{
			name: "storage failure collapses to status text",
			err:  fmt.Errorf("entry creation ended with error: %w", store.ErrExecutingStatement),
			want: http.StatusText(http.StatusInternalServerError),
		},
		{
			name: "conflict uses the sentinel text",
			err:  fmt.Errorf("creating user failed: %w", store.ErrEmailAlreadyExists),
			want: store.ErrEmailAlreadyExists.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicMessage(tt.err))
		})
	}
}
