package repositories

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

var ErrCacheMiss = errors.New("cache miss")

// CartCache is the durable key/value store behind the local cart and the
// last known loyalty balance. Get returns ErrCacheMiss for absent keys.
type CartCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryCartCache keeps entries for the life of the process only.
type MemoryCartCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCartCache() *MemoryCartCache {
	return &MemoryCartCache{entries: map[string][]byte{}}
}

func (r *MemoryCartCache) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), value...), nil
}

func (r *MemoryCartCache) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryCartCache) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key)
	return nil
}
