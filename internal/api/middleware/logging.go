package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StructuredLogging provides structured request logging middleware
func StructuredLogging(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		requestID := ""
		if param.Keys != nil {
			if id, exists := param.Keys["request_id"]; exists {
				requestID = id.(string)
			}
		}

		// Skip logging for health check endpoint
		if param.Path == "/health" {
			return ""
		}

		logger.Info("HTTP Request",
			zap.String("request_id", requestID),
			zap.String("method", param.Method),
			zap.String("path", param.Path),
			zap.Int("status", param.StatusCode),
			zap.Int64("latency_ms", param.Latency.Milliseconds()),
			zap.String("client_ip", param.ClientIP),
			zap.String("error", param.ErrorMessage),
		)

		return ""
	})
}
