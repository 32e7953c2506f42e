package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
)

// RespondServiceError maps the service error taxonomy onto the wire.
// InsufficientGems is a business rejection, not a failure: it gets 409
// with a stable code the client branches on to show the out-of-gems
// prompt and revert its optimistic state.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientGems):
		RespondError(c, http.StatusConflict, "insufficient_gems", err)
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrUnauthenticated):
		RespondError(c, http.StatusUnauthorized, "unauthenticated", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondError(c, http.StatusForbidden, "unauthorized", err)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
