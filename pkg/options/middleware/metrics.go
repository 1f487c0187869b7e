package middleware

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kart-io/iwac-chat/pkg/options"
)

// MetricsOptions defines HTTP metrics options.
type MetricsOptions struct {
	Path      string `json:"path" mapstructure:"path"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
	Subsystem string `json:"subsystem" mapstructure:"subsystem"`
}

// NewMetricsOptions creates default metrics options.
func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{
		Path:      "/metrics",
		Namespace: "iwac_chat",
		Subsystem: "http",
	}
}

// AddFlags adds flags for metrics options to the specified FlagSet.
func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.metrics."
	fs.StringVar(&o.Path, p+"path", o.Path, "Path of the Prometheus text endpoint.")
	fs.StringVar(&o.Namespace, p+"namespace", o.Namespace, "Metrics namespace.")
	fs.StringVar(&o.Subsystem, p+"subsystem", o.Subsystem, "Metrics subsystem for HTTP metrics.")
}

// Validate validates the metrics options.
func (o *MetricsOptions) Validate() []error {
	if o == nil {
		return nil
	}
	if !strings.HasPrefix(o.Path, "/") {
		return []error{errors.New("metrics path must start with '/'")}
	}
	return nil
}
