package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/pkg/apperror"
	"go-hirestream-backend/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Kind == apperror.KindInternal || appErr.Kind == apperror.KindServiceError {
				logger.Log.Error("request failed",
					"kind", string(appErr.Kind), "path", c.FullPath(), "error", err)
			}
			response.Error(c, appErr.Code, appErr.Message, gin.H{"kind": appErr.Kind})
			return
		}

		// Never expose internal error details to clients; log server-side
		// and return a generic message.
		logger.Log.Error("unhandled error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
