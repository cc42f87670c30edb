package middleware

import (
	"errors"
	"net/http"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
)

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, models.ErrorResponse{Message: message})
}

// HTTPStatus maps the error taxonomy onto status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrSameAccountTransfer),
		errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidPin):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrDependencyFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err using the shared taxonomy. Orchestration
// failures also expose the failing stage and what it may have left behind.
func RespondWithAppError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	body := models.ErrorResponse{
		Message: err.Error(),
		Code:    apperrors.Code(err),
	}
	if status == http.StatusInternalServerError {
		body.Message = "Internal server error"
	}
	if se, ok := apperrors.AsStageError(err); ok {
		stage := se.Stage
		body.Stage = &stage
		body.Step = se.Step
		body.Effect = string(se.Effect)
	}
	c.JSON(status, body)
}
