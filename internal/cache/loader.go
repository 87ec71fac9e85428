package cache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fronts an LRU cache with singleflight so concurrent misses for the
// same key run load once. Invalidate bumps a generation: loads that started
// before it never populate the cache, and callers after it never join them.
type Loader[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group

	mu  sync.Mutex // guards gen and orders Set against Purge
	gen uint64
}

func NewLoader[T any](cache *LRUCache[T]) *Loader[T] {
	return &Loader[T]{cache: cache}
}

// Get returns the cached value for key or runs load to produce it.
func (l *Loader[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	l.mu.Lock()
	gen := l.gen
	l.mu.Unlock()

	v, err, _ := l.group.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		if l.gen == gen {
			l.cache.Set(key, val)
		}
		l.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached value.
func (l *Loader[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.cache.Purge()
}

// Cache exposes the underlying LRU for registration with a Manager.
func (l *Loader[T]) Cache() *LRUCache[T] {
	return l.cache
}
