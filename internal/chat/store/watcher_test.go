package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeCorpus(t, sampleCorpus)
	h, err := NewHolder(context.Background(), NewFileLoader(path), nil)
	require.NoError(t, err)

	reloaded := make(chan int, 4)
	w := NewWatcher(path, 50*time.Millisecond, func(ctx context.Context) error {
		c, err := h.Reload(ctx)
		if err != nil {
			return err
		}
		reloaded <- c.Len()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// 等待 watcher 注册目录
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": "A", "full_text": "x"}, {"title": "B", "full_text": "y"}]`), 0o644))

	select {
	case n := <-reloaded:
		assert.Equal(t, 2, n)
	case <-time.After(5 * time.Second):
		t.Fatal("corpus was not reloaded")
	}
	assert.Equal(t, 2, h.Current().Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	path := writeCorpus(t, sampleCorpus)

	calls := make(chan struct{}, 1)
	w := NewWatcher(path, 10*time.Millisecond, func(context.Context) error {
		calls <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path+".tmp", []byte("[]"), 0o644))

	select {
	case <-calls:
		t.Fatal("reload triggered by unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := NewWatcher("/nonexistent/dir/corpus.json", time.Millisecond, func(context.Context) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}
