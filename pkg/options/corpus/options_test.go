package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())

	o.Source = SourceDatabase
	errs := o.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "dsn")

	o.Database.DSN = "file::memory:"
	o.Database.Driver = "oracle"
	o.Watch = true
	assert.Len(t, o.Validate(), 2)

	o.Source = "s3"
	assert.Len(t, o.Validate(), 1)
}

func TestComplete(t *testing.T) {
	o := &Options{Source: SourceFile, Path: "x.json"}
	require.NoError(t, o.Complete())
	assert.Equal(t, "documents", o.Database.Table)
	assert.Equal(t, "sqlite", o.Database.Driver)
}
