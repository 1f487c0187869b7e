package chat

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/internal/model"
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

func testConfig(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "1", "title": "Hajj", "full_text": "Le hadj au Bénin."}]`), 0o644))

	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = "127.0.0.1:0"
	httpOpts.Mode = "test"
	httpOpts.ShutdownTimeout = time.Second

	llmOpts := llmopts.NewProviderOptions()
	llmOpts.Provider = "ollama"

	corpusOpts := corpusopts.NewOptions()
	corpusOpts.Path = path

	logOpts := logopts.NewOptions()
	logOpts.Level = "ERROR"

	return &Config{
		HTTPOptions:       httpOpts,
		MiddlewareOptions: mwopts.NewOptions(),
		LogOptions:        logOpts,
		LLMOptions:        llmOpts,
		RetryOptions:      retryopts.NewOptions(),
		ChatOptions:       chatopts.NewOptions(),
		CorpusOptions:     corpusOpts,
		CacheOptions:      cacheopts.NewOptions(),
		TracingOptions:    tracing.NewOptions(),
	}
}

func TestNewComponentsFromFile(t *testing.T) {
	cfg := testConfig(t)
	comp, err := cfg.NewComponents(context.Background())
	require.NoError(t, err)
	defer comp.Close()

	assert.Equal(t, 1, comp.Corpus.Current().Len())
	assert.Equal(t, "ollama", comp.Provider.Name())
	assert.False(t, comp.Pipeline.Cache().Enabled())
}

func TestNewComponentsFromDatabase(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "corpus.db")
	db, err := store.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Table("documents").AutoMigrate(&store.DocumentRow{}))
	rows := []store.DocumentRow{
		store.NewDocumentRow(&model.Document{ID: "a", Title: "A", FullText: "x"}, 0),
		store.NewDocumentRow(&model.Document{ID: "b", Title: "B", FullText: "y"}, 1),
	}
	require.NoError(t, db.Table("documents").Create(&rows).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	cfg := testConfig(t)
	cfg.CorpusOptions.Source = corpusopts.SourceDatabase
	cfg.CorpusOptions.Database.DSN = dsn

	comp, err := cfg.NewComponents(context.Background())
	require.NoError(t, err)
	defer comp.Close()
	assert.Equal(t, 2, comp.Corpus.Current().Len())
	assert.Equal(t, "database:sqlite/documents", comp.Corpus.Current().Source())
}

func TestNewComponentsBadCorpus(t *testing.T) {
	cfg := testConfig(t)
	cfg.CorpusOptions.Path = filepath.Join(t.TempDir(), "missing.json")

	_, err := cfg.NewComponents(context.Background())
	assert.Error(t, err)
}

func TestNewComponentsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMOptions.Provider = "nope"

	_, err := cfg.NewComponents(context.Background())
	assert.Error(t, err)
}

func TestServerRun(t *testing.T) {
	cfg := testConfig(t)
	srv, err := cfg.NewServer(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	var addr string
	require.Eventually(t, func() bool {
		addr = srv.Addr()
		return addr != "127.0.0.1:0"
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status": "ok", "documents": 1}`, string(body))

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), "iwac_chat_http_requests_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
