package middleware

import (
	"github.com/spf13/pflag"

	"github.com/kart-io/iwac-chat/pkg/options"
)

// RecoveryOptions defines recovery middleware options.
type RecoveryOptions struct {
	// EnableStackTrace 是否在响应中返回堆栈，生产环境始终关闭。
	EnableStackTrace bool `json:"enable-stack-trace" mapstructure:"enable-stack-trace"`
}

// NewRecoveryOptions creates default recovery options.
func NewRecoveryOptions() *RecoveryOptions {
	return &RecoveryOptions{EnableStackTrace: false}
}

// AddFlags adds flags for recovery options to the specified FlagSet.
func (o *RecoveryOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.EnableStackTrace, options.Join(prefixes...)+"middleware.recovery.enable-stack-trace", o.EnableStackTrace, "Return panic stack traces in error responses (ignored in production).")
}

// Validate validates the recovery options.
func (o *RecoveryOptions) Validate() []error {
	return nil
}
