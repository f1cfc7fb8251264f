package middleware

import (
	"errors"
	"net/http"

	"gradhire-backend/internal/delivery/http/response"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/logger"
	"gradhire-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &appErr):
			if appErr.Err != nil {
				logger.Log.ErrorContext(c.Request.Context(), "request failed",
					"path", c.FullPath(),
					"kind", appErr.Kind,
					"reason", appErr.Reason,
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
				Kind: string(appErr.Kind),
				Code: appErr.Reason,
			})
		case errors.As(err, &validationErrs):
			response.Error(c, http.StatusBadRequest, "Validation failed", response.ErrorBody{
				Kind:    string(apperror.KindValidation),
				Code:    apperror.CodeInvalidInput,
				Details: validation.FormatValidationErrors(validationErrs),
			})
		default:
			// Never expose internal error details to clients.
			logger.Log.ErrorContext(c.Request.Context(), "unhandled error",
				"path", c.FullPath(),
				"error", err,
			)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", response.ErrorBody{
				Kind: string(apperror.KindInternal),
				Code: apperror.CodeInternal,
			})
		}
	}
}
