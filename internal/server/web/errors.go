package web

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFoundOrForbidden), errors.Is(err, common.ErrExportDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
