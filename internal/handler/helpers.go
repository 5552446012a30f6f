package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"vantage/internal/domain"
	"vantage/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var rejectedErr *domain.MoveRejectedError
	var conflictErr *domain.ConflictError

	switch {
	// Checked before ErrValidation, which it also matches
	case errors.As(err, &rejectedErr):
		extras := map[string]interface{}{
			"reason":  rejectedErr.Reason,
			"item_id": rejectedErr.ItemID,
		}
		if rejectedErr.ConflictingID != "" {
			extras["conflicting_id"] = rejectedErr.ConflictingID
		}
		httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, rejectedErr.Message, extras)
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// currentUser reads the authenticated user, writing a 401 when missing
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := parseUUID(httputil.GetUserID(r))
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// parseCompanyID reads the {id} path value, writing a 400 when malformed
func parseCompanyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, "Company ID must be a positive integer")
		return 0, false
	}
	return id, true
}
