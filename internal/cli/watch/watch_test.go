package watch

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

func TestRun_CallsOnChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "query.yaml")
	require.NoError(t, os.WriteFile(file, []byte("table: a\n"), 0o644))

	var calls atomic.Int32
	w, err := New(func() error {
		calls.Add(1)
		return nil
	}, 20*time.Millisecond, file)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, os.WriteFile(file, []byte("table: b\n"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	// Writes to other files in the directory are ignored.
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, calls.Load())

	cancel()
	assert.NoError(t, <-done)
}

func TestRun_InitialError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "query.yaml")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	w, err := New(func() error { return assert.AnError }, 0, file)
	require.NoError(t, err)
	assert.ErrorIs(t, w.Run(context.Background()), assert.AnError)
}
