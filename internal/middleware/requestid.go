package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key holding the canonical request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader carries the request ID back to the client.
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns every request a fresh server-generated UUID. A client
// X-Request-ID is never adopted as the canonical ID; it is kept under
// "client_request_id" and logged for correlation only.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		if fromClient := c.GetHeader(RequestIDHeader); fromClient != "" {
			c.Set("client_request_id", fromClient)
			log.WithFields(logrus.Fields{
				"request_id":        id,
				"client_request_id": fromClient,
			}).Debug("client provided request ID mapped to server ID")
		}

		c.Next()
	}
}
