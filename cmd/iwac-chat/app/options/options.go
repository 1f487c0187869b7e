// Package options contains flags and options for initializing the chat server.
package options

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	chatsvc "github.com/kart-io/iwac-chat/internal/chat"
	cliflag "github.com/kart-io/iwac-chat/pkg/app/cliflag"
	"github.com/kart-io/iwac-chat/pkg/infra/tracing"
	cacheopts "github.com/kart-io/iwac-chat/pkg/options/cache"
	chatopts "github.com/kart-io/iwac-chat/pkg/options/chat"
	corpusopts "github.com/kart-io/iwac-chat/pkg/options/corpus"
	httpopts "github.com/kart-io/iwac-chat/pkg/options/http"
	llmopts "github.com/kart-io/iwac-chat/pkg/options/llm"
	logopts "github.com/kart-io/iwac-chat/pkg/options/logger"
	mwopts "github.com/kart-io/iwac-chat/pkg/options/middleware"
	retryopts "github.com/kart-io/iwac-chat/pkg/options/retry"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// MiddlewareOptions contains HTTP middleware configuration.
	MiddlewareOptions *mwopts.Options `json:"middleware" mapstructure:"middleware"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// LLMOptions contains chat provider configuration.
	LLMOptions *llmopts.ProviderOptions `json:"llm" mapstructure:"llm"`

	// RetryOptions contains retry, rate limit and circuit breaker configuration.
	RetryOptions *retryopts.Options `json:"retry" mapstructure:"retry"`

	// ChatOptions contains retrieval and answering configuration.
	ChatOptions *chatopts.Options `json:"chat" mapstructure:"chat"`

	// CorpusOptions contains the corpus source configuration.
	CorpusOptions *corpusopts.Options `json:"corpus" mapstructure:"corpus"`

	// CacheOptions contains answer cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// TracingOptions contains OpenTelemetry configuration.
	TracingOptions *tracing.Options `json:"tracing" mapstructure:"tracing"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:       httpopts.NewOptions(),
		MiddlewareOptions: mwopts.NewOptions(),
		LogOptions:        logopts.NewOptions(),
		LLMOptions:        llmopts.NewProviderOptions(),
		RetryOptions:      retryopts.NewOptions(),
		ChatOptions:       chatopts.NewOptions(),
		CorpusOptions:     corpusopts.NewOptions(),
		CacheOptions:      cacheopts.NewOptions(),
		TracingOptions:    tracing.NewOptions(),
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.MiddlewareOptions.AddFlags(fss.FlagSet("middleware"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.LLMOptions.AddFlags(fss.FlagSet("llm"))
	o.RetryOptions.AddFlags(fss.FlagSet("retry"))
	o.ChatOptions.AddFlags(fss.FlagSet("chat"))
	o.CorpusOptions.AddFlags(fss.FlagSet("corpus"))
	o.CacheOptions.AddFlags(fss.FlagSet("cache"))
	o.TracingOptions.AddFlags(fss.FlagSet("tracing"))
	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := o.MiddlewareOptions.Complete(); err != nil {
		return fmt.Errorf("middleware: %w", err)
	}
	if err := o.LogOptions.Complete(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := o.LLMOptions.Complete(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := o.RetryOptions.Complete(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.CorpusOptions.Complete(); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	if err := o.CacheOptions.Complete(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := o.TracingOptions.Complete(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.MiddlewareOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.LLMOptions.Validate()...)
	errs = append(errs, o.RetryOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.CorpusOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)
	errs = append(errs, o.TracingOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds a chatsvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*chatsvc.Config, error) {
	return &chatsvc.Config{
		HTTPOptions:       o.HTTPOptions,
		MiddlewareOptions: o.MiddlewareOptions,
		LogOptions:        o.LogOptions,
		LLMOptions:        o.LLMOptions,
		RetryOptions:      o.RetryOptions,
		ChatOptions:       o.ChatOptions,
		CorpusOptions:     o.CorpusOptions,
		CacheOptions:      o.CacheOptions,
		TracingOptions:    o.TracingOptions,
	}, nil
}
