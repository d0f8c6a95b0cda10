package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eralearn/internal/pkg/apperror"
	"eralearn/internal/pkg/response"
)

// ErrorHandler is the single place where handler errors become HTTP
// responses. Handlers call c.Error(err) and return; the last error decides
// the status. Full detail is logged, only the public message is sent.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered",
					append(requestFields(c),
						zap.String("panic", fmt.Sprintf("%v", recovered)),
						zap.ByteString("stack", debug.Stack()),
					)...,
				)
				if !c.Writer.Written() {
					response.AbortWithError(c, http.StatusInternalServerError, "internal server error")
					return
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperror.Status(apperror.KindOf(err))

		fields := append(requestFields(c), zap.Int("status", status), zap.Error(err))
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Info("request rejected", fields...)
		}

		if c.Writer.Written() {
			return
		}
		response.Error(c, status, apperror.PublicMessage(err))
	}
}

func requestFields(c *gin.Context) []zap.Field {
	return []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("user_id", c.GetString(UserIDKey)),
	}
}
