// Package chat assembles the IWAC chat service from its configuration.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kart-io/iwac-chat/internal/chat/biz"
	"github.com/kart-io/iwac-chat/internal/chat/handler"
	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/chat/router"
	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/pkg/infra/app"
	"github.com/kart-io/iwac-chat/pkg/infra/middleware"
	"github.com/kart-io/iwac-chat/pkg/infra/pool"
	"github.com/kart-io/iwac-chat/pkg/infra/server"
	httpserver "github.com/kart-io/iwac-chat/pkg/infra/server/transport/http"
	"github.com/kart-io/iwac-chat/pkg/infra/tracing"
	"github.com/kart-io/iwac-chat/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/iwac-chat/pkg/llm/anthropic"
	_ "github.com/kart-io/iwac-chat/pkg/llm/ollama"
	_ "github.com/kart-io/iwac-chat/pkg/llm/openai"
	"github.com/kart-io/iwac-chat/pkg/llm/resilience"
	cacheopts "github.com/kart-io/iwac-chat/pkg/options/cache"
	chatopts "github.com/kart-io/iwac-chat/pkg/options/chat"
	corpusopts "github.com/kart-io/iwac-chat/pkg/options/corpus"
	httpopts "github.com/kart-io/iwac-chat/pkg/options/http"
	llmopts "github.com/kart-io/iwac-chat/pkg/options/llm"
	logopts "github.com/kart-io/iwac-chat/pkg/options/logger"
	mwopts "github.com/kart-io/iwac-chat/pkg/options/middleware"
	retryopts "github.com/kart-io/iwac-chat/pkg/options/retry"
)

// Name is the name of the application.
const Name = "iwac-chat"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions       *httpopts.Options
	MiddlewareOptions *mwopts.Options
	LogOptions        *logopts.Options
	LLMOptions        *llmopts.ProviderOptions
	RetryOptions      *retryopts.Options
	ChatOptions       *chatopts.Options
	CorpusOptions     *corpusopts.Options
	CacheOptions      *cacheopts.Options
	TracingOptions    *tracing.Options
}

// InitLogger 初始化全局日志，附带服务名和版本字段。
func (cfg *Config) InitLogger() error {
	if err := cfg.LogOptions.Init(
		"service.name", Name,
		"service.version", app.GetVersion(),
	); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// Components 是问答流水线及其依赖，HTTP 服务和 ask 命令共用。
type Components struct {
	Pipeline *biz.Pipeline
	Corpus   *biz.CorpusManager
	Provider llm.ChatProvider
	Metrics  *metrics.ChatMetrics

	closers []func()
}

// Close releases the worker pool, database and redis connections.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// NewComponents 加载语料并组装问答流水线。
func (cfg *Config) NewComponents(ctx context.Context) (*Components, error) {
	comp := &Components{}
	ready := false
	defer func() {
		if !ready {
			comp.Close()
		}
	}()

	// 1. 索引构建使用的协程池
	workers, err := pool.NewPool("corpus-index", &pool.Config{
		Capacity:       cfg.CorpusOptions.IndexWorkers,
		ExpiryDuration: 10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	comp.closers = append(comp.closers, workers.Release)

	// 2. 语料
	loader, closeLoader, err := cfg.newLoader()
	if err != nil {
		return nil, err
	}
	if closeLoader != nil {
		comp.closers = append(comp.closers, closeLoader)
	}
	holder, err := store.NewHolder(ctx, loader, workers)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	// 3. LLM 供应商，外层加熔断和限流
	base, err := cfg.LLMOptions.NewChatProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	provider := resilience.NewResilientChatProvider(base,
		cfg.RetryOptions.CircuitBreakerConfig(),
		cfg.RetryOptions.Limiter(),
	)
	logger.Infow("Chat provider initialized",
		"provider", base.Name(),
		"model", cfg.LLMOptions.Model,
		"rate_limit", cfg.RetryOptions.RateLimit,
	)

	// 4. 回答缓存
	cache, closeRedis := cfg.newCache(ctx)
	if closeRedis != nil {
		comp.closers = append(comp.closers, closeRedis)
	}

	// 5. 流水线
	m := metrics.New(cfg.MiddlewareOptions.Metrics.Namespace)
	retry := cfg.RetryOptions.RetryConfig()
	opts := cfg.ChatOptions
	pipeline := biz.NewPipeline(
		holder,
		biz.NewKeywordExtractor(provider, retry, opts.MaxKeywords, m),
		biz.NewRetriever(opts.TopK),
		biz.NewAssembler(opts.TokenBudget, opts.MaxExcerptTokens),
		biz.NewGenerator(provider, retry, biz.GeneratorConfig{
			SystemPrompt:    opts.SystemPrompt,
			MaxHistoryTurns: opts.MaxHistoryTurns,
		}, m),
		cache,
		m,
		biz.PipelineConfig{
			NoInformationMessage: opts.NoInformationMessage,
			UnavailableMessage:   opts.UnavailableMessage,
			RequestTimeout:       opts.RequestTimeout,
		},
	)
	logger.Infow("Chat pipeline initialized",
		"top_k", opts.TopK,
		"token_budget", opts.TokenBudget,
		"max_keywords", opts.MaxKeywords,
		"cache.enabled", cache.Enabled(),
	)

	comp.Pipeline = pipeline
	comp.Corpus = biz.NewCorpusManager(holder, cache, m)
	comp.Provider = provider
	comp.Metrics = m
	ready = true
	return comp, nil
}

func (cfg *Config) newLoader() (store.Loader, func(), error) {
	opts := cfg.CorpusOptions
	if opts.Source != corpusopts.SourceDatabase {
		return store.NewFileLoader(opts.Path), nil, nil
	}

	db, err := store.OpenDB(opts.Database.Driver, opts.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open corpus database: %w", err)
	}
	loader := store.NewDBLoader(db, opts.Database.Table)
	logger.Infow("Corpus database opened", "driver", opts.Database.Driver, "table", opts.Database.Table)
	return loader, func() { _ = loader.Close() }, nil
}

// newCache 连接 Redis。连接失败时记录告警并关闭缓存，服务照常启动。
func (cfg *Config) newCache(ctx context.Context) (*biz.AnswerCache, func()) {
	opts := cfg.CacheOptions
	if !opts.Enabled {
		logger.Info("Cache is disabled")
		return nil, nil
	}

	client, err := opts.Redis.NewClient(ctx)
	if err != nil {
		logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
		return nil, nil
	}
	logger.Infow("Redis cache initialized", "addr", opts.Redis.Addr(), "ttl", opts.TTL.String())

	cache := biz.NewAnswerCache(client, biz.AnswerCacheConfig{
		Enabled:   true,
		TTL:       opts.TTL,
		KeyPrefix: opts.KeyPrefix,
	})
	return cache, func() { closeRedis(client) }
}

func closeRedis(client *goredis.Client) {
	if err := client.Close(); err != nil {
		logger.Warnw("failed to close redis client", "error", err.Error())
	}
}

// Server represents the chat server.
type Server struct {
	manager    *server.Manager
	http       *httpserver.Server
	watcher    *store.Watcher
	tracer     *tracing.Provider
	components *Components
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	if err := cfg.InitLogger(); err != nil {
		return nil, err
	}
	logger.Infow("Starting chat service...", "version", app.GetVersion())

	cfg.TracingOptions.ServiceName = Name
	cfg.TracingOptions.ServiceVersion = app.GetVersion()
	tracer, err := tracing.NewProvider(ctx, cfg.TracingOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	logger.Infow("Tracing initialized", "enabled", tracer.Enabled(), "exporter", string(cfg.TracingOptions.ExporterType))

	comp, err := cfg.NewComponents(ctx)
	if err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, err
	}

	httpSrv := httpserver.NewServer(cfg.HTTPOptions, cfg.MiddlewareOptions, comp.Metrics.Registry())
	h := handler.NewChatHandler(comp.Pipeline, comp.Corpus, comp.Provider)
	router.Register(httpSrv.Engine(), h, cfg.MiddlewareOptions.Metrics.Path, middleware.Handler(comp.Metrics.Registry()))

	manager := server.NewManager(cfg.HTTPOptions.ShutdownTimeout)
	manager.Add(httpSrv)

	s := &Server{
		manager:    manager,
		http:       httpSrv,
		tracer:     tracer,
		components: comp,
	}
	if cfg.CorpusOptions.Watch && cfg.CorpusOptions.Source == corpusopts.SourceFile {
		s.watcher = store.NewWatcher(cfg.CorpusOptions.Path, cfg.CorpusOptions.Debounce, func(ctx context.Context) error {
			_, err := comp.Corpus.Reload(ctx)
			return err
		})
	}

	logger.Info("Chat service is ready")
	return s, nil
}

// Run 运行 HTTP 服务和语料监听，直到 ctx 结束或其中之一失败。
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		s.components.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("failed to shutdown tracer provider", "error", err.Error())
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.manager.Run(ctx)
	})
	if s.watcher != nil {
		g.Go(func() error {
			return s.watcher.Run(ctx)
		})
	}
	return g.Wait()
}

// Addr returns the HTTP listen address.
func (s *Server) Addr() string {
	return s.http.Addr()
}
