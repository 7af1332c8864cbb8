package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/Oghenemaro93/QGlide/pkg/errors"
)

// SentryMiddleware attaches a Sentry hub to every request so handler errors
// carry request context when reported.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// ErrorHandler reports unexpected handler errors to Sentry. Expected ride
// lifecycle failures (guard violations, state conflicts, validation) are
// filtered out by errors.ShouldReportError.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		errors.AddBreadcrumbForRequest(c.Request.Method, c.Request.URL.Path, statusCode, duration)

		for _, ginErr := range c.Errors {
			if errors.ShouldReportError(ginErr.Err, statusCode) {
				captureWithRequestScope(c, func(hub *sentry.Hub) {
					hub.CaptureException(ginErr.Err)
				})
			}
		}

		if statusCode >= 500 && len(c.Errors) == 0 {
			captureWithRequestScope(c, func(hub *sentry.Hub) {
				hub.CaptureMessage(fmt.Sprintf("HTTP %d on %s %s", statusCode, c.Request.Method, c.Request.URL.Path))
			})
		}
	}
}

// RecoveryWithSentry recovers from panics, reports them and returns a 500.
func RecoveryWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				captureWithRequestScope(c, func(hub *sentry.Hub) {
					hub.Scope().SetContext("panic", map[string]interface{}{
						"value": fmt.Sprintf("%v", err),
						"stack": string(debug.Stack()),
					})
					hub.CaptureMessage(fmt.Sprintf("panic: %v", err))
				})
				sentry.Flush(2 * time.Second)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"message": "internal server error"},
				})
			}
		}()

		c.Next()
	}
}

func captureWithRequestScope(c *gin.Context, capture func(hub *sentry.Hub)) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		if userID, exists := c.Get("user_id"); exists {
			scope.SetUser(sentry.User{ID: fmt.Sprintf("%v", userID)})
		}
		if correlationID := GetCorrelationID(c); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}
		capture(hub)
	})
}
