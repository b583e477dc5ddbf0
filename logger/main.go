package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gitlab.com/creatorhub/commission_api/monitor"
)

const requestLoggerKey = "_log"

// Config for logger
type Config struct {
	Logger *zerolog.Logger
	// SkipPath lists paths that get a request id but no request logger
	SkipPath []string
}

// GetLogger from gin context
func GetLogger(c *gin.Context) zerolog.Logger {
	if logger, ok := c.Get(requestLoggerKey); ok {
		return logger.(zerolog.Logger)
	}
	return log.Logger
}

// SetLogger initializes the logging middleware. Failed requests are logged
// with their latency, writes are measured in the request metrics.
func SetLogger(config ...Config) gin.HandlerFunc {
	var newConfig Config
	if len(config) > 0 {
		newConfig = config[0]
	}
	skip := make(map[string]struct{}, len(newConfig.SkipPath))
	for _, path := range newConfig.SkipPath {
		skip[path] = struct{}{}
	}

	sublog := log.Logger
	if newConfig.Logger != nil {
		sublog = *newConfig.Logger
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		fullPath := path
		if raw := c.Request.URL.RawQuery; raw != "" {
			fullPath = path + "?" + raw
		}

		id := xid.New().String()
		c.Writer.Header().Set("X-Request-Id", id)

		_, skipped := skip[path]
		reqlogger := sublog.With().Str("request_id", id).Logger()
		if !skipped {
			c.Set(requestLoggerKey, reqlogger)
		}

		write := c.Request.Method != http.MethodGet
		if write {
			monitor.APIWriteRequestQueue.WithLabelValues().Inc()
		}

		c.Next()

		latency := time.Since(start)
		if write {
			monitor.APIWriteRequestQueue.WithLabelValues().Dec()
			monitor.RequestDelay.WithLabelValues(c.Request.Method, c.FullPath()).Observe(latency.Seconds())
		}

		status := c.Writer.Status()
		if skipped || status < http.StatusBadRequest {
			return
		}

		msg := "Request"
		if len(c.Errors) > 0 {
			msg = c.Errors.String()
		}
		event := reqlogger.Warn()
		if status >= http.StatusInternalServerError {
			event = reqlogger.Error()
		}
		event = event.
			Str("method", c.Request.Method).
			Str("path", fullPath).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", latency)
		if username := c.Param("username"); username != "" {
			event = event.Str("username", username)
		}
		if creatorID := c.Param("creator_id"); creatorID != "" {
			event = event.Str("creator_id", creatorID)
		}
		event.Msg(msg)
	}
}
