package v1

import (
	"errors"
	"strconv"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// actorFrom reads the caller AuthMiddleware put on the context.
func actorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:   c.GetString(string(domain.KeyUserID)),
		Role: c.GetString(string(domain.KeyUserRole)),
	}
}

func parseID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid ID format")
	}
	return id, nil
}

// bindError keeps validator errors intact so ErrorHandler can list each field.
func bindError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return validationErrs
	}
	return apperror.BadRequest("Invalid request body")
}
