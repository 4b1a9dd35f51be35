package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"firstlook/internal/models"
)

// statusFor maps service errors to HTTP status codes and client messages.
// Internal errors are not echoed back.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvalidPackage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, models.ErrInsufficientCoins):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, models.ErrStoryNotFound), errors.Is(err, models.ErrUserNotFound), errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrNoUnusedSeeds):
		return http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrExternalService):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// bindError turns binding and validation failures into a 400.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid field " + fe.Field() + ": failed '" + fe.Tag() + "'",
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request: " + err.Error()})
}
