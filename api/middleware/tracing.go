package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/iamail/mailgate/internal/tracing"
)

// TracingMiddleware creates a new span for each request and adds common tags
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(
			c.Request.Context(),
			c.Request.Method+" "+c.FullPath(),
			c.Request.Header,
		)
		defer span.Finish()

		tracing.SetDefaultRestSpanTags(ctx, span)

		if id := c.Param("id"); id != "" {
			tracing.TagEntity(span, id)
		}

		c.Header("X-Trace-ID", tracing.GetTraceId(span))

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		span.SetTag("http.status_code", c.Writer.Status())
		if c.Writer.Status() >= 500 {
			tracing.TraceErr(span, errors.Errorf("request failed with status %d", c.Writer.Status()))
		}
	}
}
