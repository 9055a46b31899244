package middleware

import (
	"net/http"

	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/response"
	"provider-subscription-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := ierr.HTTPStatusFromErr(err)
		message := ierr.DisplayMessage(err)
		if message == "" {
			message = "An unexpected error occurred"
		}

		if status >= http.StatusInternalServerError {
			logging.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err.Error(),
			)
		}

		c.JSON(status, response.Error(ierr.CodeFromErr(err), message, ierr.SafeDetails(err)))
	}
}
