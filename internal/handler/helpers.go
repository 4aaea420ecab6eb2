package handler

import (
	"errors"
	"net/http"

	"docuvault/internal/domain"
	"docuvault/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var cascadeErr *domain.CascadeError

	switch {
	// Checked before the sentinel cases: a cascade error unwraps to its
	// first branch cause, which may itself match a sentinel.
	case errors.As(err, &cascadeErr):
		// Partial cascade: some branches survived, report which.
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError,
			"folder deletion partially failed", map[string]interface{}{
				"folder_id":       cascadeErr.FolderID,
				"failed_branches": len(cascadeErr.Branches),
			})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrLimitExceeded):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
