package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt int64 // Unix nanoseconds; zero = no expire
}

type shard[V any] struct {
	sync.RWMutex
	entries map[string]entry[V]
}

// MemoryCache is the in-process backend. Keys are spread over shards so
// a burst of odds lookups does not serialize on one lock.
type MemoryCache[V any] struct {
	shards []*shard[V]
	done   chan struct{}
}

// NewMemoryCache creates a 256-shard cache swept every second.
func NewMemoryCache[V any]() *MemoryCache[V] {
	return NewMemoryCacheWithOptions[V](256, time.Second)
}

// NewMemoryCacheWithOptions allows customizing shard count and sweep
// interval.
func NewMemoryCacheWithOptions[V any](shardCount int, sweepEvery time.Duration) *MemoryCache[V] {
	mc := &MemoryCache[V]{
		shards: make([]*shard[V], shardCount),
		done:   make(chan struct{}),
	}
	for i := range mc.shards {
		mc.shards[i] = &shard[V]{entries: make(map[string]entry[V])}
	}
	go mc.sweep(sweepEvery)
	return mc
}

// Stop terminates the sweeper goroutine. Safe to call more than once.
func (mc *MemoryCache[V]) Stop() {
	select {
	case <-mc.done:
	default:
		close(mc.done)
	}
}

func (mc *MemoryCache[V]) shardFor(key string) *shard[V] {
	// FNV-1a
	const offset = 2166136261
	const prime = 16777619
	h := uint32(offset)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= prime
	}
	return mc.shards[int(h)%len(mc.shards)]
}

// Get takes the write lock so an expired entry can be dropped in the
// same critical section it is detected in.
func (mc *MemoryCache[V]) Get(_ context.Context, key string) (V, error) {
	var zero V
	now := time.Now().UnixNano()
	s := mc.shardFor(key)

	s.Lock()
	defer s.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return zero, ErrCacheMiss
	}
	if e.expiresAt > 0 && now > e.expiresAt {
		delete(s.entries, key)
		return zero, ErrCacheMiss
	}
	return e.value, nil
}

func (mc *MemoryCache[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	s := mc.shardFor(key)
	s.Lock()
	s.entries[key] = entry[V]{value: value, expiresAt: exp}
	s.Unlock()
	return nil
}

func (mc *MemoryCache[V]) Delete(_ context.Context, key string) error {
	s := mc.shardFor(key)
	s.Lock()
	delete(s.entries, key)
	s.Unlock()
	return nil
}

func (mc *MemoryCache[V]) MGet(_ context.Context, keys ...string) ([]V, []error) {
	results := make([]V, len(keys))
	errs := make([]error, len(keys))

	type lookup struct {
		idx int
		key string
	}
	byShard := make(map[*shard[V]][]lookup, len(mc.shards))
	for i, k := range keys {
		sh := mc.shardFor(k)
		byShard[sh] = append(byShard[sh], lookup{i, k})
	}

	for sh, lookups := range byShard {
		now := time.Now().UnixNano()
		sh.Lock()
		for _, l := range lookups {
			e, ok := sh.entries[l.key]
			if !ok || (e.expiresAt > 0 && now > e.expiresAt) {
				if ok {
					delete(sh.entries, l.key)
				}
				errs[l.idx] = ErrCacheMiss
				continue
			}
			results[l.idx] = e.value
		}
		sh.Unlock()
	}
	return results, errs
}

func (mc *MemoryCache[V]) MSet(_ context.Context, kv map[string]V, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	byShard := make(map[*shard[V]]map[string]entry[V], len(mc.shards))
	for k, v := range kv {
		sh := mc.shardFor(k)
		if byShard[sh] == nil {
			byShard[sh] = make(map[string]entry[V])
		}
		byShard[sh][k] = entry[V]{value: v, expiresAt: exp}
	}
	for sh, entries := range byShard {
		sh.Lock()
		for k, e := range entries {
			sh.entries[k] = e
		}
		sh.Unlock()
	}
	return nil
}

func (mc *MemoryCache[V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now().UnixNano()
			for _, sh := range mc.shards {
				go func(s *shard[V]) {
					s.Lock()
					for k, e := range s.entries {
						if e.expiresAt > 0 && now > e.expiresAt {
							delete(s.entries, k)
						}
					}
					s.Unlock()
				}(sh)
			}
		case <-mc.done:
			return
		}
	}
}
