package state

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ETAnderson/dealboard/internal/domain"
)

func phone(name string, prices ...float64) domain.CatalogItem {
	it := domain.CatalogItem{Kind: domain.KindPhone, Name: name, Category: "Flagship"}
	for _, p := range prices {
		it.Offers = append(it.Offers, domain.Offer{Merchant: "m", Price: p, URL: "https://x", Rating: 4})
	}
	return it
}

func TestMemoryStore_CreateAssignsIDAndTimestamps(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.CreateItem(ctx, phone("Pixel", 500))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasPrefix(got.ID, "itm_") {
		t.Fatalf("expected itm_ id, got %q", got.ID)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("unexpected timestamps: %v %v", got.CreatedAt, got.UpdatedAt)
	}

	back, ok, err := s.GetItem(ctx, domain.KindPhone, got.ID)
	if err != nil || !ok {
		t.Fatalf("expected item: ok=%v err=%v", ok, err)
	}
	if back.Name != "Pixel" || len(back.Offers) != 1 {
		t.Fatalf("unexpected item: %+v", back)
	}

	// wrong kind is a miss
	if _, ok, _ := s.GetItem(ctx, domain.KindLaptop, got.ID); ok {
		t.Fatalf("expected miss for other kind")
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, n := range []string{"A", "B", "C"} {
		if _, err := s.CreateItem(ctx, phone(n, 1)); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if _, err := s.CreateItem(ctx, domain.CatalogItem{Kind: domain.KindLaptop, Name: "L"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	items, err := s.ListItems(ctx, domain.KindPhone)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 phones, got %d", len(items))
	}
	if items[0].Name != "C" || items[1].Name != "B" || items[2].Name != "A" {
		t.Fatalf("unexpected order: %s %s %s", items[0].Name, items[1].Name, items[2].Name)
	}
}

func TestMemoryStore_ListSameInstantUsesInsertOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	for _, n := range []string{"A", "B"} {
		_, _ = s.CreateItem(ctx, phone(n, 1))
	}

	items, _ := s.ListItems(ctx, domain.KindPhone)
	if items[0].Name != "B" || items[1].Name != "A" {
		t.Fatalf("unexpected order: %s %s", items[0].Name, items[1].Name)
	}
}

func TestMemoryStore_ReturnedItemsAreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, _ := s.CreateItem(ctx, phone("Pixel", 500))
	created.Offers[0].Price = 1

	items, _ := s.ListItems(ctx, domain.KindPhone)
	items[0].Offers[0].Price = 2

	back, _, _ := s.GetItem(ctx, domain.KindPhone, created.ID)
	if back.Offers[0].Price != 500 {
		t.Fatalf("store state leaked: %v", back.Offers[0].Price)
	}
}

func TestMemoryStore_UpdateKeepsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, _ := s.CreateItem(ctx, phone("Pixel", 500))

	upd := phone("Pixel 9", 450, 470)
	upd.ID = created.ID
	got, ok, err := s.UpdateItem(ctx, upd)
	if err != nil || !ok {
		t.Fatalf("expected update: ok=%v err=%v", ok, err)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed")
	}
	if got.Name != "Pixel 9" || len(got.Offers) != 2 {
		t.Fatalf("unexpected item: %+v", got)
	}

	missing := phone("x")
	missing.ID = "itm_missing"
	if _, ok, _ := s.UpdateItem(ctx, missing); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, _ := s.CreateItem(ctx, phone("Pixel", 500))

	if ok, _ := s.DeleteItem(ctx, domain.KindLaptop, created.ID); ok {
		t.Fatalf("delete with wrong kind must miss")
	}
	if ok, _ := s.DeleteItem(ctx, domain.KindPhone, created.ID); !ok {
		t.Fatalf("expected delete")
	}
	if ok, _ := s.DeleteItem(ctx, domain.KindPhone, created.ID); ok {
		t.Fatalf("second delete must miss")
	}
}

func TestMemoryStore_NameExistsIsCaseInsensitive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _ = s.CreateItem(ctx, phone("Galaxy S24", 800))

	cases := []struct {
		kind domain.Kind
		name string
		want bool
	}{
		{domain.KindPhone, "galaxy s24", true},
		{domain.KindPhone, "  GALAXY S24 ", true},
		{domain.KindPhone, "Galaxy", false},
		{domain.KindLaptop, "Galaxy S24", false},
	}
	for _, tc := range cases {
		got, err := s.NameExists(ctx, tc.kind, tc.name)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got != tc.want {
			t.Fatalf("NameExists(%s, %q) = %v, want %v", tc.kind, tc.name, got, tc.want)
		}
	}
}

func TestMemoryStore_Clicks(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := domain.ClickKey{ItemName: "Pixel", Merchant: "Amazon", URL: "https://a"}
	b := domain.ClickKey{ItemName: "Pixel", Merchant: "Flipkart", URL: "https://b"}

	for i := 0; i < 3; i++ {
		_ = s.IncrementClick(ctx, b)
	}
	_ = s.IncrementClick(ctx, a)

	all, err := s.ListClicks(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 counters, got %d", len(all))
	}
	if all[0].ClickKey != b || all[0].Count != 3 {
		t.Fatalf("unexpected top counter: %+v", all[0])
	}
	if all[1].Count != 1 {
		t.Fatalf("unexpected second counter: %+v", all[1])
	}

	top, _ := s.ListClicks(ctx, 1)
	if len(top) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(top))
	}
}

func TestMemoryStore_IdempotencyTTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	keyHash := HashIdempotencyKey("k1")
	now := time.Now().UTC()

	err := s.PutIdempotency(ctx, "admin-1", "/x", keyHash, IdempotencyRecord{
		StatusCode: 200,
		BodyJSON:   []byte(`{"ok":true}`),
		CreatedAt:  now,
		ExpiresAt:  now.Add(-1 * time.Second),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, ok, err := s.GetIdempotency(ctx, "admin-1", "/x", keyHash)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ok {
		t.Fatalf("expected expired record to be treated as missing")
	}
}

func TestMemoryStore_IdempotencyScopedBySubject(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now().UTC()
	_ = s.PutIdempotency(ctx, "admin-1", "/x", "h", IdempotencyRecord{
		StatusCode: 201,
		BodyJSON:   []byte(`{}`),
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	})

	if _, ok, _ := s.GetIdempotency(ctx, "admin-2", "/x", "h"); ok {
		t.Fatalf("record leaked across subjects")
	}
	rec, ok, _ := s.GetIdempotency(ctx, "admin-1", "/x", "h")
	if !ok || rec.StatusCode != 201 {
		t.Fatalf("expected record: ok=%v rec=%+v", ok, rec)
	}
}

func TestMemoryStore_PurgeExpiredIdempotency(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now().UTC()
	_ = s.PutIdempotency(ctx, "a", "/x", "old", IdempotencyRecord{ExpiresAt: now.Add(-time.Minute)})
	_ = s.PutIdempotency(ctx, "a", "/x", "new", IdempotencyRecord{ExpiresAt: now.Add(time.Hour)})
	_ = s.PutIdempotency(ctx, "b", "/y", "old", IdempotencyRecord{ExpiresAt: now.Add(-time.Hour)})

	n, err := s.PurgeExpiredIdempotency(ctx, now)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 purged, got %d", n)
	}
	if _, ok := s.idem["b"]; ok {
		t.Fatalf("expected empty subject to be dropped")
	}
	if _, ok, _ := s.GetIdempotency(ctx, "a", "/x", "new"); !ok {
		t.Fatalf("live record must survive")
	}
}
