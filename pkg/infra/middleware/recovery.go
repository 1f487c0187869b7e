package middleware

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	ctxlog "github.com/kart-io/iwac-chat/pkg/infra/logger"
	mwopts "github.com/kart-io/iwac-chat/pkg/options/middleware"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
	"github.com/kart-io/iwac-chat/pkg/utils/response"
)

// PanicHandler is called after a panic has been logged and before the error response is written.
type PanicHandler func(c *gin.Context, err any, stack []byte)

// Recovery returns a middleware that turns panics into ErrPanic responses.
// The full stack trace is always logged; it is returned to the client only
// when enabled and not running in production.
func Recovery(opts mwopts.RecoveryOptions, onPanic PanicHandler) gin.HandlerFunc {
	withStack := opts.EnableStackTrace
	if withStack && isProductionEnvironment() {
		logger.Warn("Stack trace is enabled but running in production environment; stack traces will only be logged.")
		withStack = false
	}

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			ctxlog.L(c.Request.Context()).Errorw("panic recovered",
				"panic", r,
				"stack_trace", string(stack),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			if onPanic != nil {
				onPanic(c, r, stack)
			}

			msg := fmt.Sprintf("panic: %v", r)
			if withStack {
				msg += "\n" + string(stack)
			}
			response.Fail(c, errors.ErrPanic.WithMessage(msg))
		}()
		c.Next()
	}
}

// isProductionEnvironment checks APP_ENV or GO_ENV.
func isProductionEnvironment() bool {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	switch strings.ToLower(env) {
	case "production", "prod":
		return true
	default:
		return false
	}
}
