package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/pkg/utils/json"
)

func TestOptionsRedactsPassword(t *testing.T) {
	o := NewOptions()
	o.Password = "s3cret"

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")
	assert.Contains(t, string(data), redactedPassword)
	assert.NotContains(t, o.String(), "s3cret")
}

func TestOptionsCompleteFromEnv(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "from-env")
	o := NewOptions()
	require.NoError(t, o.Complete())
	assert.Equal(t, "from-env", o.Password)
}

func TestOptionsValidate(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
	assert.Equal(t, "127.0.0.1:6379", o.Addr())

	o.Host = ""
	o.Port = 0
	assert.Len(t, o.Validate(), 2)
}
