package server

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/observability"
)

// observe starts a span per request and puts it, with the observer, into the
// request context so the façade and adapters attach to it.
func observe(observer observability.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := observer.StartSpan(c.Request.Context(), observability.SpanHTTPRequest,
			observability.String(observability.AttrHTTPMethod, c.Request.Method),
			observability.String(observability.AttrHTTPRoute, route),
		)
		ctx = observability.ContextWithObserver(ctx, observer)
		c.Request = c.Request.WithContext(ctx)

		watch := utils.StartStopwatch()
		c.Next()
		elapsed := watch.Stop()

		status := c.Writer.Status()
		span.SetAttributes(
			observability.Int(observability.AttrHTTPStatusCode, status),
			observability.Duration(observability.AttrDuration, elapsed),
		)
		if status >= 500 {
			span.SetStatus(observability.StatusError, "")
		} else {
			span.SetStatus(observability.StatusOK, "")
		}
		span.End()

		observer.Counter(observability.MetricHTTPRequests).Add(ctx, 1,
			observability.String(observability.AttrHTTPMethod, c.Request.Method),
			observability.String(observability.AttrHTTPRoute, route),
			observability.String(observability.AttrHTTPStatusCode, strconv.Itoa(status)),
		)
		observer.Debug(ctx, "http request",
			observability.String(observability.AttrHTTPMethod, c.Request.Method),
			observability.String(observability.AttrHTTPRoute, route),
			observability.Int(observability.AttrHTTPStatusCode, status),
			observability.Duration(observability.AttrDuration, elapsed),
		)
	}
}
