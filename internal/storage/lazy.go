package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Factory builds the underlying Storage on first use.
type Factory func(ctx context.Context) (Storage, error)

// Lazy is a process-wide storage handle initialised at most once.
//
// Concurrent first callers block on the same initialisation. A successful
// result is reused for the lifetime of the process; a failed one is not
// cached, so the next call tries again.
type Lazy struct {
	factory Factory

	mu    sync.Mutex
	store Storage
}

var _ Storage = (*Lazy)(nil)

// NewLazy wraps factory.
func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

// Get returns the initialised storage, building it if needed.
func (l *Lazy) Get(ctx context.Context) (Storage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}

	s, err := l.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	l.store = s
	return s, nil
}

// Upload implements Storage.
func (l *Lazy) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	s, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return s.Upload(ctx, key, reader, size, contentType)
}

// Download implements Storage.
func (l *Lazy) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Download(ctx, key)
}

// PublicURL implements Storage. Before initialisation it returns the bare key.
func (l *Lazy) PublicURL(key string) string {
	l.mu.Lock()
	s := l.store
	l.mu.Unlock()

	if s == nil {
		return key
	}
	return s.PublicURL(key)
}
