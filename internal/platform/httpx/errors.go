package httpx

import (
	"errors"
	"net/http"

	"github.com/campuskit/campuskit/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// A partial delete is reported as 207 so callers can distinguish it from both a
// clean success and a provider outage where nothing was deleted.
func RespondError(w http.ResponseWriter, err error) {
	var partial *shared.PartialDeleteError
	switch {
	case errors.As(err, &partial):
		JSON(w, http.StatusMultiStatus, map[string]any{
			"deleted":    true,
			"externalId": partial.ExternalID,
			"warning":    "mirrored identity was not removed and requires operator follow-up",
		})
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthenticated", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusForbidden, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrProviderUnavailable):
		Problem(w, http.StatusBadGateway, "Identity Provider Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
