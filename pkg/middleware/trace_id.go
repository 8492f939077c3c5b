package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
)

type CtxKey string

const CtxKeyTraceID CtxKey = "trace_id"

// TraceID assigns every request a ksuid and echoes it back to the caller so
// citizens reporting a failing submission can quote something greppable.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ksuid.New().String()

		ctx := context.WithValue(c.Request.Context(), CtxKeyTraceID, id)
		c.Request = c.Request.Clone(ctx)
		c.Header("X-Trace-Id", id)

		c.Next()
	}
}
