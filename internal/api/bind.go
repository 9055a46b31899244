package api

import (
	ierr "provider-subscription-api/internal/errors"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the request body and reports failures as validation errors.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.Error(ierr.WithError(err).
			WithHintf("Invalid request format: %s", err.Error()).
			Mark(ierr.ErrValidation))
		return false
	}
	return true
}
