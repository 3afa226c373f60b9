package state

import (
	"testing"

	"github.com/ETAnderson/dealboard/internal/domain"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ? LIMIT ?`

	if got := MySQL.Rebind(q); got != q {
		t.Fatalf("mysql must keep placeholders, got %q", got)
	}

	want := `SELECT a FROM t WHERE x = $1 AND y = $2 LIMIT $3`
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("unexpected postgres query:\n got %q\nwant %q", got, want)
	}
}

func TestDialectUpserts(t *testing.T) {
	if got := Postgres.Rebind(Postgres.upsertIdempotency); got == Postgres.upsertIdempotency {
		t.Fatalf("expected numbered placeholders")
	}
	for _, d := range []Dialect{MySQL, Postgres} {
		if d.upsertClick == "" || d.upsertIdempotency == "" {
			t.Fatalf("%s: missing upsert statements", d.Name)
		}
	}
}

func TestClickKeyHashDistinguishesFields(t *testing.T) {
	a := clickKeyHash(domainClick("ab", "c", "u"))
	b := clickKeyHash(domainClick("a", "bc", "u"))
	if a == b {
		t.Fatalf("expected distinct hashes for shifted fields")
	}
}

func domainClick(item, merchant, url string) domain.ClickKey {
	return domain.ClickKey{ItemName: item, Merchant: merchant, URL: url}
}
