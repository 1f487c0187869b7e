package chat

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
	assert.Equal(t, 5, o.TopK)
	assert.Equal(t, 3000, o.TokenBudget)
	assert.Equal(t, 8, o.MaxKeywords)
}

func TestFlagsWithPrefix(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs, "ask")

	require.NoError(t, fs.Parse([]string{"--ask.chat.top-k=3", "--ask.chat.token-budget=200"}))
	assert.Equal(t, 3, o.TopK)
	assert.Equal(t, 200, o.TokenBudget)
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	o.TopK = 0
	o.TokenBudget = -1
	o.MaxKeywords = 0
	assert.Len(t, o.Validate(), 3)
}
