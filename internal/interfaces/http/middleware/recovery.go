package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
	"github.com/turtacn/molsearch/pkg/types/common"
)

// Recovery returns middleware that converts handler panics into 500 responses
// with the standard error envelope. The panic value and stack are logged;
// neither leaks to the client.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("http")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic recovered",
					logging.Any("panic", r),
					logging.String("method", c.Request.Method),
					logging.String("path", c.Request.URL.Path),
					logging.String("request_id", GetRequestID(c)),
					logging.String("stack", string(debug.Stack())),
				)

				resp := common.NewErrorResponse(
					string(errors.ErrCodeInternal),
					errors.DefaultMessageForCode(errors.ErrCodeInternal),
				)
				resp.RequestID = GetRequestID(c)
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()
	}
}
