package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"heritage-archive-api/pkg/logger"
)

const (
	// RequestIDHeader carries the request ID.
	RequestIDHeader = "X-Request-ID"
)

// RequestID propagates or generates the request ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)

		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
