// Package testutil holds the shared harness for tests that need templates on
// disk, a configured engine and captured logs.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cdf2fhir/internal/ctxlog"
	"github.com/vk/cdf2fhir/internal/engine"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/template"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Harness is a temporary package root with an engine resolving
// "[PACKAGE]/..." references against it.
type Harness struct {
	Root   string
	Engine *engine.Engine
	Logs   *SafeBuffer
	Ctx    context.Context
}

// WriteFiles writes files, keyed by slash-separated relative path, under root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// NewHarness writes files into a fresh package root and builds an engine over
// mods. The harness context carries a debug logger writing to Logs.
func NewHarness(t *testing.T, files map[string]string, mods ...registry.Module) *Harness {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)

	resolver, err := template.NewResolver(root)
	require.NoError(t, err)

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	reg := registry.New(mods...)
	require.NoError(t, reg.Validate(ctx))

	return &Harness{
		Root:   root,
		Engine: engine.New(template.NewLoader(resolver), reg),
		Logs:   logs,
		Ctx:    ctx,
	}
}

// Path returns the absolute path of a file written by the harness.
func (h *Harness) Path(name string) string {
	return filepath.Join(h.Root, filepath.FromSlash(name))
}
