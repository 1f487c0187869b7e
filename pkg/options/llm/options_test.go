package llm

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/pkg/llm"
)

func TestProviderOptions_EnvFallback(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	o := NewProviderOptions()
	require.NoError(t, o.Complete())
	assert.Equal(t, "sk-ant-test", o.APIKey)
	assert.Empty(t, o.Validate())
}

func TestProviderOptions_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	o := NewProviderOptions()
	o.Provider = "openai"
	require.NoError(t, o.Complete())
	errs := o.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "OPENAI_API_KEY")
}

func TestProviderOptions_OllamaNeedsNoKey(t *testing.T) {
	o := NewProviderOptions()
	o.Provider = "ollama"
	assert.Empty(t, o.Validate())
}

func TestProviderOptions_FlagsAndConfigMap(t *testing.T) {
	o := NewProviderOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--llm.model=claude-test", "--llm.timeout=5s", "--llm.temperature=0.3"}))

	m := o.ToConfigMap()
	assert.Equal(t, "claude-test", m[llm.ConfigModel])
	assert.Equal(t, 5*time.Second, m[llm.ConfigTimeout])
	assert.InDelta(t, 0.3, m[llm.ConfigTemperature], 1e-9)
	assert.Equal(t, 1000, m[llm.ConfigMaxTokens])
}
