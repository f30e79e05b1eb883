// Package testsupport provides shared helpers for package tests: a scripted
// in-memory provider adapter and canned configuration rooted in temp dirs.
package testsupport

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/provider"
)

// NewConfig returns a config whose paths all live under a temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.ExportDir = filepath.Join(root, "exports")
	cfg.Generation.RetryBaseDelaySeconds = 0
	cfg.Generation.RetryMaxDelaySeconds = 0
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// MustOpenStore opens a store on a temp database and closes it with the test.
func MustOpenStore(t *testing.T, cfg *config.Config) *bookstore.Store {
	t.Helper()
	store, err := bookstore.Open(cfg.DatabasePath(), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Reply is one scripted adapter response: either Content or Err.
type Reply struct {
	Content string
	Err     error
}

// FakeAdapter is a scripted provider.Adapter. Each Complete call consumes
// the next reply; when the script runs out the last reply repeats.
type FakeAdapter struct {
	ProviderName provider.Name

	mu       sync.Mutex
	replies  []Reply
	requests []provider.Request
}

// NewFakeAdapter builds a scripted adapter with the given replies.
func NewFakeAdapter(replies ...Reply) *FakeAdapter {
	return &FakeAdapter{ProviderName: provider.Google, replies: replies}
}

func (f *FakeAdapter) Name() provider.Name {
	if f.ProviderName == "" {
		return provider.Google
	}
	return f.ProviderName
}

func (f *FakeAdapter) Complete(ctx context.Context, req provider.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return "", context.Canceled
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	if reply.Err != nil {
		return "", reply.Err
	}
	return reply.Content, nil
}

// Calls returns the number of Complete calls made so far.
func (f *FakeAdapter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns a copy of every request seen so far.
func (f *FakeAdapter) Requests() []provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]provider.Request, len(f.requests))
	copy(cp, f.requests)
	return cp
}
