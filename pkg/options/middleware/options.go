// Package middleware provides HTTP middleware configuration options.
package middleware

import (
	"github.com/spf13/pflag"

	"github.com/kart-io/iwac-chat/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options 汇总 HTTP 服务使用的中间件配置。
type Options struct {
	RequestID *RequestIDOptions `json:"request-id" mapstructure:"request-id"`
	Logger    *LoggerOptions    `json:"logger" mapstructure:"logger"`
	Recovery  *RecoveryOptions  `json:"recovery" mapstructure:"recovery"`
	CORS      *CORSOptions      `json:"cors" mapstructure:"cors"`
	Metrics   *MetricsOptions   `json:"metrics" mapstructure:"metrics"`
}

// NewOptions creates middleware options with defaults.
func NewOptions() *Options {
	return &Options{
		RequestID: NewRequestIDOptions(),
		Logger:    NewLoggerOptions(),
		Recovery:  NewRecoveryOptions(),
		CORS:      NewCORSOptions(),
		Metrics:   NewMetricsOptions(),
	}
}

// AddFlags adds flags for all middleware options.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	o.RequestID.AddFlags(fs, prefixes...)
	o.Logger.AddFlags(fs, prefixes...)
	o.Recovery.AddFlags(fs, prefixes...)
	o.CORS.AddFlags(fs, prefixes...)
	o.Metrics.AddFlags(fs, prefixes...)
}

// Validate validates all middleware options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	errs = append(errs, o.RequestID.Validate()...)
	errs = append(errs, o.Logger.Validate()...)
	errs = append(errs, o.Recovery.Validate()...)
	errs = append(errs, o.CORS.Validate()...)
	errs = append(errs, o.Metrics.Validate()...)
	return errs
}

// Complete fills nil groups with defaults.
func (o *Options) Complete() error {
	if o.RequestID == nil {
		o.RequestID = NewRequestIDOptions()
	}
	if o.Logger == nil {
		o.Logger = NewLoggerOptions()
	}
	if o.Recovery == nil {
		o.Recovery = NewRecoveryOptions()
	}
	if o.CORS == nil {
		o.CORS = NewCORSOptions()
	}
	if o.Metrics == nil {
		o.Metrics = NewMetricsOptions()
	}
	return nil
}
