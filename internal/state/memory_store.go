package state

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ETAnderson/dealboard/internal/domain"
)

type MemoryStore struct {
	mu sync.RWMutex

	items map[string]memoryItem // id -> item
	seq   uint64

	clicks map[string]domain.ClickCount // key hash -> counter

	idem map[string]map[string]map[string]IdempotencyRecord // subject -> endpoint -> keyhash -> record

	now func() time.Time
}

type memoryItem struct {
	item domain.CatalogItem
	seq  uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  make(map[string]memoryItem),
		clicks: make(map[string]domain.ClickCount),
		idem:   make(map[string]map[string]map[string]IdempotencyRecord),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListItems returns the kind's items newest first. Items created in the
// same instant keep reverse insertion order.
func (s *MemoryStore) ListItems(ctx context.Context, kind domain.Kind) ([]domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]memoryItem, 0, len(s.items))
	for _, mi := range s.items {
		if mi.item.Kind == kind {
			rows = append(rows, mi)
		}
	}

	slices.SortFunc(rows, func(a, b memoryItem) int {
		if c := b.item.CreatedAt.Compare(a.item.CreatedAt); c != 0 {
			return c
		}
		if a.seq > b.seq {
			return -1
		}
		if a.seq < b.seq {
			return 1
		}
		return 0
	})

	out := make([]domain.CatalogItem, 0, len(rows))
	for _, mi := range rows {
		out = append(out, cloneItem(mi.item))
	}
	return out, nil
}

func (s *MemoryStore) GetItem(ctx context.Context, kind domain.Kind, id string) (domain.CatalogItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mi, ok := s.items[id]
	if !ok || mi.item.Kind != kind {
		return domain.CatalogItem{}, false, nil
	}
	return cloneItem(mi.item), true, nil
}

func (s *MemoryStore) CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item = cloneItem(item)
	item.ID = NewItemID()
	item.CreatedAt = now
	item.UpdatedAt = now

	s.seq++
	s.items[item.ID] = memoryItem{item: item, seq: s.seq}
	return cloneItem(item), nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mi, ok := s.items[item.ID]
	if !ok || mi.item.Kind != item.Kind {
		return domain.CatalogItem{}, false, nil
	}

	item = cloneItem(item)
	item.CreatedAt = mi.item.CreatedAt
	item.UpdatedAt = s.now()

	s.items[item.ID] = memoryItem{item: item, seq: mi.seq}
	return cloneItem(item), true, nil
}

func (s *MemoryStore) DeleteItem(ctx context.Context, kind domain.Kind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mi, ok := s.items[id]
	if !ok || mi.item.Kind != kind {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *MemoryStore) NameExists(ctx context.Context, kind domain.Kind, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	for _, mi := range s.items {
		if mi.item.Kind == kind && strings.EqualFold(strings.TrimSpace(mi.item.Name), name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) IncrementClick(ctx context.Context, key domain.ClickKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := clickKeyHash(key)
	c := s.clicks[h]
	c.ClickKey = key
	c.Count++
	c.UpdatedAt = s.now()
	s.clicks[h] = c
	return nil
}

// ListClicks returns counters with the highest count first.
func (s *MemoryStore) ListClicks(ctx context.Context, limit int) ([]domain.ClickCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ClickCount, 0, len(s.clicks))
	for _, c := range s.clicks {
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b domain.ClickCount) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		if c := strings.Compare(a.ItemName, b.ItemName); c != 0 {
			return c
		}
		if c := strings.Compare(a.Merchant, b.Merchant); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})

	if limit <= 0 || limit > len(out) {
		return out, nil
	}
	return out[:limit], nil
}

func (s *MemoryStore) GetIdempotency(ctx context.Context, subject string, endpoint string, idemKeyHash string) (IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.idem[subject][endpoint][idemKeyHash]
	if !ok {
		return IdempotencyRecord{}, false, nil
	}

	if s.now().After(rec.ExpiresAt) {
		return IdempotencyRecord{}, false, nil
	}

	return rec, true, nil
}

func (s *MemoryStore) PutIdempotency(ctx context.Context, subject string, endpoint string, idemKeyHash string, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.idem[subject]
	if !ok {
		sub = make(map[string]map[string]IdempotencyRecord)
		s.idem[subject] = sub
	}
	ep, ok := sub[endpoint]
	if !ok {
		ep = make(map[string]IdempotencyRecord)
		sub[endpoint] = ep
	}
	rec.BodyJSON = append([]byte(nil), rec.BodyJSON...)
	ep[idemKeyHash] = rec
	return nil
}

func (s *MemoryStore) PurgeExpiredIdempotency(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for subject, sub := range s.idem {
		for endpoint, ep := range sub {
			for k, rec := range ep {
				if now.After(rec.ExpiresAt) {
					delete(ep, k)
					n++
				}
			}
			if len(ep) == 0 {
				delete(sub, endpoint)
			}
		}
		if len(sub) == 0 {
			delete(s.idem, subject)
		}
	}
	return n, nil
}
