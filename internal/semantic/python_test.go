package semantic

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wgomg/aura/internal/config"
	"github.com/wgomg/aura/internal/utils"
)

// fakeWorker answers every request with one fixed vector, so callers must
// send single-text batches.
const fakeWorker = `#!/bin/sh
read config
echo '{"status":"ready","embedding_dim":2}'
while read line; do
  case "$line" in
    *fail*) echo '{"error":"model exploded"}' ;;
    *) echo '{"embeddings":[[0.6,0.8]],"elapsed_ms":1}' ;;
  esac
done
`

func newFakePool(t *testing.T, workers int) *PythonWorkerPool {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "venv", "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "python"), []byte(fakeWorker), 0755))

	cfg := &config.SemanticConfig{
		Model:       "fake",
		WorkerCount: workers,
		BatchSize:   1,
		Python: config.PythonConfig{
			ConfigDir:              dir,
			ProcessReadyTimeout:    5,
			ProcessShutdownTimeout: 1,
			ProcessKillTimeout:     1,
		},
	}
	p := NewPythonEncoder(utils.NewDiscardLogger(), cfg)

	started := make(chan error, workers)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i, started)
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-started)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestPythonWorkerPoolEncode(t *testing.T) {
	p := newFakePool(t, 2)

	ctx := utils.WithRequestID(context.Background(), "req-1")
	for i := 0; i < 5; i++ {
		vecs, err := p.Encode(ctx, []string{"hello"})
		require.NoError(t, err)
		assert.Equal(t, []Embedding{{0.6, 0.8}}, vecs)
	}

	vecs, err := p.Encode(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestPythonWorkerPoolScriptError(t *testing.T) {
	p := newFakePool(t, 1)

	_, err := p.Encode(context.Background(), []string{"please fail"})
	assert.ErrorContains(t, err, "model exploded")

	// the worker survives a script-level error
	vecs, err := p.Encode(context.Background(), []string{"ok"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
}

func TestPythonWorkerPoolCountMismatchRestartsWorker(t *testing.T) {
	p := newFakePool(t, 1)

	_, err := p.Encode(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "got 1 embeddings for 2 texts")

	vecs, err := p.Encode(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
}

func TestPythonWorkerPoolClosed(t *testing.T) {
	p := newFakePool(t, 1)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err := p.Encode(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPythonWorkerPoolHealthCheck(t *testing.T) {
	p := newFakePool(t, 1)
	require.NoError(t, p.HealthCheck(context.Background()))

	require.NoError(t, p.Close())
	err := p.HealthCheck(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPythonWorkerPoolHonorsContext(t *testing.T) {
	p := NewPythonEncoder(utils.NewDiscardLogger(), &config.SemanticConfig{WorkerCount: 1})
	defer p.Close()

	// no workers are running, so nothing drains the queue
	for i := 0; i < cap(p.taskQueue); i++ {
		p.taskQueue <- Task{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Encode(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInstallScripts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "python")

	updated, err := installScripts(dir)
	require.NoError(t, err)
	assert.True(t, updated)

	script, err := os.ReadFile(filepath.Join(dir, scriptName))
	require.NoError(t, err)
	assert.Contains(t, string(script), "SentenceTransformer")

	updated, err = installScripts(dir)
	require.NoError(t, err)
	assert.False(t, updated)

	// stale files from an older build are replaced
	require.NoError(t, os.WriteFile(filepath.Join(dir, requirementsName), []byte("numpy\n"), 0644))
	updated, err = installScripts(dir)
	require.NoError(t, err)
	assert.True(t, updated)

	reqs, err := os.ReadFile(filepath.Join(dir, requirementsName))
	require.NoError(t, err)
	assert.Contains(t, string(reqs), "sentence-transformers")
}
