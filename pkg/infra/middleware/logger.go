package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	ctxlog "github.com/kart-io/iwac-chat/pkg/infra/logger"
	mwopts "github.com/kart-io/iwac-chat/pkg/options/middleware"
)

// fieldsPool is a sync.Pool for reusing fields slices to reduce heap allocations.
var fieldsPool = sync.Pool{
	New: func() any {
		s := make([]any, 0, 16)
		return &s
	},
}

func acquireFields() *[]any {
	return fieldsPool.Get().(*[]any)
}

func releaseFields(fields *[]any) {
	*fields = (*fields)[:0]
	fieldsPool.Put(fields)
}

// Logger returns a middleware that logs one structured line per request.
// 5xx responses log at error level, 4xx at warn level.
func Logger(opts mwopts.LoggerOptions) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := acquireFields()
		defer releaseFields(fields)

		status := c.Writer.Status()
		*fields = append(*fields,
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", status,
			"remote_addr", c.ClientIP(),
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
			"bytes", c.Writer.Size(),
		)
		if len(c.Errors) > 0 {
			*fields = append(*fields, "errors", c.Errors.String())
		}

		log := ctxlog.L(c.Request.Context())
		switch {
		case status >= 500:
			log.Errorw("HTTP Request", (*fields)...)
		case status >= 400:
			log.Warnw("HTTP Request", (*fields)...)
		default:
			log.Infow("HTTP Request", (*fields)...)
		}
	}
}
