package middleware

import (
	"github.com/gin-gonic/gin"
	"log/slog"
	"time"
)

const LoggerKey = "Logger"

// 記錄每個請求的方法、路徑、狀態碼和耗時
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(LoggerKey, logger)
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"clientIP", c.ClientIP(),
		)
	}
}

// 取得請求使用的Logger
func LoggerFrom(c *gin.Context) *slog.Logger {
	if value, exists := c.Get(LoggerKey); exists {
		if logger, ok := value.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}
