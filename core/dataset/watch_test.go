package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(100*time.Millisecond, dir)
	w.Tick = 10 * time.Millisecond

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()
	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jams"), []byte("{}"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(time.Second, filepath.Join(t.TempDir(), "absent"))
	err := w.Run(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestIsCorpusFile(t *testing.T) {
	assert.True(t, isCorpusFile("x_hex.wav"))
	assert.True(t, isCorpusFile("x.jams"))
	assert.False(t, isCorpusFile("x_mic.wav"))
	assert.False(t, isCorpusFile("x.txt"))
}
