package biz

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCorpusManagerReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	writeFile(t, path, `[{"id": "a", "title": "A", "full_text": "x"}]`)

	holder, err := store.NewHolder(context.Background(), store.NewFileLoader(path), nil)
	require.NoError(t, err)
	m := metrics.New("test")
	mgr := NewCorpusManager(holder, nil, m)
	assert.Equal(t, float64(1), m.Snapshot().CorpusDocuments)

	writeFile(t, path, `[{"id": "a", "title": "A", "full_text": "x"}, {"id": "b", "title": "B", "full_text": "y"}]`)
	corpus, err := mgr.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, corpus.Len())
	assert.Same(t, corpus, mgr.Current())
	assert.Equal(t, int64(1), mgr.Reloads())

	doc, err := mgr.Document("b")
	require.NoError(t, err)
	assert.Equal(t, "B", doc.Title)

	snap := m.Snapshot()
	assert.Equal(t, float64(2), snap.CorpusDocuments)
	assert.Equal(t, float64(1), snap.CorpusReloads)
}

func TestCorpusManagerReloadFailureKeepsCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	writeFile(t, path, `[{"id": "a", "title": "A", "full_text": "x"}]`)

	holder, err := store.NewHolder(context.Background(), store.NewFileLoader(path), nil)
	require.NoError(t, err)
	mgr := NewCorpusManager(holder, nil, metrics.New("test"))
	before := mgr.Current()

	writeFile(t, path, `{not json`)
	_, err = mgr.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrCorpusReload))
	assert.Same(t, before, mgr.Current())
	assert.Equal(t, int64(0), mgr.Reloads())
}

func TestCorpusManagerStaticHolder(t *testing.T) {
	mgr := NewCorpusManager(store.NewStaticHolder(nil), nil, nil)

	_, err := mgr.Document("a")
	assert.True(t, stderrors.Is(err, errors.ErrDocumentNotFound))

	_, err = mgr.Reload(context.Background())
	assert.True(t, stderrors.Is(err, errors.ErrCorpusReload))
}
