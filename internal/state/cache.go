package state

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ETAnderson/dealboard/internal/domain"
)

// Cache is a byte cache with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Logger interface {
	Printf(format string, v ...any)
}

// CachedStore serves ListItems from a Cache and drops the kind's entry on
// every catalog write. Cache failures fall through to the wrapped Store.
// A fill is skipped when a write to the same kind landed while the store was
// being read.
type CachedStore struct {
	Store
	Cache Cache
	TTL   time.Duration
	Log   Logger

	mu  sync.Mutex
	gen map[domain.Kind]uint64
}

func NewCachedStore(s Store, c Cache, ttl time.Duration, log Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{Store: s, Cache: c, TTL: ttl, Log: log}
}

func listCacheKey(kind domain.Kind) string {
	return "catalog:list:" + string(kind)
}

func (s *CachedStore) ListItems(ctx context.Context, kind domain.Kind) ([]domain.CatalogItem, error) {
	key := listCacheKey(kind)

	if b, ok, err := s.Cache.Get(ctx, key); err != nil {
		s.logf("cache get %s: %v", key, err)
	} else if ok {
		var items []domain.CatalogItem
		if err := json.Unmarshal(b, &items); err == nil {
			return items, nil
		}
		s.logf("cache decode %s: discarding entry", key)
	}

	start := s.generation(kind)

	items, err := s.Store.ListItems(ctx, kind)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(items)
	if err != nil {
		return items, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[kind] != start {
		return items, nil
	}
	if err := s.Cache.Set(ctx, key, b, s.TTL); err != nil {
		s.logf("cache set %s: %v", key, err)
	}
	return items, nil
}

func (s *CachedStore) generation(kind domain.Kind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[kind]
}

func (s *CachedStore) CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	out, err := s.Store.CreateItem(ctx, item)
	if err == nil {
		s.invalidate(ctx, item.Kind)
	}
	return out, err
}

func (s *CachedStore) UpdateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, bool, error) {
	out, ok, err := s.Store.UpdateItem(ctx, item)
	if err == nil && ok {
		s.invalidate(ctx, item.Kind)
	}
	return out, ok, err
}

func (s *CachedStore) DeleteItem(ctx context.Context, kind domain.Kind, id string) (bool, error) {
	ok, err := s.Store.DeleteItem(ctx, kind, id)
	if err == nil && ok {
		s.invalidate(ctx, kind)
	}
	return ok, err
}

func (s *CachedStore) invalidate(ctx context.Context, kind domain.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen == nil {
		s.gen = make(map[domain.Kind]uint64)
	}
	s.gen[kind]++

	if err := s.Cache.Delete(ctx, listCacheKey(kind)); err != nil {
		s.logf("cache delete %s: %v", listCacheKey(kind), err)
	}
}

func (s *CachedStore) logf(format string, v ...any) {
	if s.Log != nil {
		s.Log.Printf(format, v...)
	}
}

// MemoryCache is an in-process Cache used when no Redis address is set.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
