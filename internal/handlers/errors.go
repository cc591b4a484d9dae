package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/services"
	"github.com/worknote/backend/internal/timeperiod"
	"github.com/worknote/backend/pkg/logger"
	"github.com/worknote/backend/pkg/response"
)

// respondError maps domain errors onto the response envelope. Everything
// except store failures is an expected, caller-recoverable condition and
// keeps its field/row detail; store failures are logged and surfaced
// generically.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.UniquenessConflictError
	var danglingErr *services.DanglingReferenceError

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Error())
	case errors.Is(err, timeperiod.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.As(err, &conflictErr):
		response.Error(c, response.NewConflict(conflictErr.Error()))
	case errors.As(err, &danglingErr):
		response.BadRequest(c, danglingErr.Error())
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(c, "access denied")
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid username or password")
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("store failure")
		response.ServerError(c, "internal error")
	}
}
