package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mlevkov/go-fin-keeper/internal/mail"
	"github.com/mlevkov/go-fin-keeper/internal/service"
	"github.com/mlevkov/go-fin-keeper/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrValidationInvalidEmail:  http.StatusBadRequest,
	service.ErrValidationWeakPassword:  http.StatusBadRequest,
	service.ErrValidationInvalidKind:   http.StatusBadRequest,
	service.ErrValidationInvalidAmount: http.StatusBadRequest,
	service.ErrValidationMissingFields: http.StatusBadRequest,

	service.ErrInvalidOTPCode: http.StatusBadRequest,
	service.ErrOTPExpired:     http.StatusBadRequest,

	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrUserNotVerified:         http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrUserAlreadyVerified:     http.StatusConflict,

	store.ErrEmailAlreadyExists: http.StatusConflict,
	store.ErrNoUserWasFound:     http.StatusNotFound,
	store.ErrEntryNotFound:      http.StatusNotFound,

	mail.ErrDeliveryFailed: http.StatusBadGateway,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// publicMessage returns the caller-facing description of a failed operation.
// Mapped client errors expose their sentinel text; unauthorized and server
// errors collapse to the bare status text so internals never leak.
//
// A validation error whose own text begins with the sentinel keeps its full
// annotation (e.g. the list of missing fields), since the service composes
// those messages for the caller.
func publicMessage(err error) string {
	status := statusFromError(err)
	if status == http.StatusUnauthorized || status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			if status == http.StatusBadRequest && strings.HasPrefix(err.Error(), target.Error()) {
				return err.Error()
			}
			return target.Error()
		}
	}
	return http.StatusText(status)
}
