package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/pkg/app/cliflag"
)

type testOptions struct {
	Addr    string        `mapstructure:"addr"`
	TopK    int           `mapstructure:"top-k"`
	Timeout time.Duration `mapstructure:"timeout"`
	Key     string        `mapstructure:"key"`

	completed bool
	invalid   bool
}

type testConfig struct {
	Server *testOptions `mapstructure:"server"`
}

func (c *testConfig) Flags() (fss cliflag.NamedFlagSets) {
	fs := fss.FlagSet("server")
	fs.StringVar(&c.Server.Addr, "server.addr", c.Server.Addr, "listen address")
	fs.IntVar(&c.Server.TopK, "server.top-k", c.Server.TopK, "retrieval breadth")
	fs.DurationVar(&c.Server.Timeout, "server.timeout", c.Server.Timeout, "timeout")
	fs.StringVar(&c.Server.Key, "server.key", c.Server.Key, "key")
	return fss
}

func (c *testConfig) Complete() error {
	c.Server.completed = true
	return nil
}

func (c *testConfig) Validate() error {
	if c.Server.invalid || c.Server.TopK < 0 {
		return errors.New("invalid options")
	}
	return nil
}

func newTestConfig() *testConfig {
	return &testConfig{Server: &testOptions{Addr: ":8080", TopK: 5, Timeout: time.Second}}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, cfg *testConfig, args ...string) error {
	t.Helper()
	a := NewApp(
		WithName("test-app"),
		WithOptions(cfg),
		WithNoVersion(),
		WithRunFunc(func() error { return nil }),
	)
	a.Command().SetArgs(args)
	return a.Command().Execute()
}

func TestConfigPrecedence(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9090\"\n  top-k: 7\n  timeout: 3s\n  key: ${TEST_APP_SECRET}\n")
	t.Setenv("TEST_APP_SECRET", "expanded")
	t.Setenv("TEST_APP_SERVER_TOP_K", "9")

	cfg := newTestConfig()
	require.NoError(t, execute(t, cfg, "--config", path, "--server.timeout=4s"))

	assert.Equal(t, ":9090", cfg.Server.Addr, "file overrides default")
	assert.Equal(t, 9, cfg.Server.TopK, "env overrides file")
	assert.Equal(t, 4*time.Second, cfg.Server.Timeout, "flag overrides file")
	assert.Equal(t, "expanded", cfg.Server.Key, "${VAR} is expanded")
	assert.True(t, cfg.Server.completed)
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := newTestConfig()
	require.NoError(t, execute(t, cfg))
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.TopK)
}

func TestValidationFailure(t *testing.T) {
	cfg := newTestConfig()
	cfg.Server.invalid = true
	err := execute(t, cfg, "--config", writeConfig(t, "server: {}\n"))
	assert.EqualError(t, err, "invalid options")
}

func TestSubCommandSeesConfig(t *testing.T) {
	cfg := newTestConfig()
	var seen int
	sub := &cobra.Command{
		Use: "ask",
		RunE: func(*cobra.Command, []string) error {
			seen = cfg.Server.TopK
			return nil
		},
	}
	a := NewApp(WithName("test-app"), WithOptions(cfg), WithNoVersion(), WithCommands(sub))
	a.Command().SetArgs([]string{"ask", "--config", writeConfig(t, "server:\n  top-k: 2\n")})
	require.NoError(t, a.Command().Execute())
	assert.Equal(t, 2, seen)
}

func TestEnvPrefix(t *testing.T) {
	assert.Equal(t, "IWAC_CHAT", EnvPrefix("iwac-chat"))
}
