package state

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ETAnderson/dealboard/internal/domain"
)

type IdempotencyRecord struct {
	StatusCode int
	BodyJSON   []byte
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

type Store interface {
	// Catalog
	ListItems(ctx context.Context, kind domain.Kind) ([]domain.CatalogItem, error)
	GetItem(ctx context.Context, kind domain.Kind, id string) (domain.CatalogItem, bool, error)
	CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error)
	UpdateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, bool, error)
	DeleteItem(ctx context.Context, kind domain.Kind, id string) (bool, error)
	NameExists(ctx context.Context, kind domain.Kind, name string) (bool, error)

	// Outbound click counters
	IncrementClick(ctx context.Context, key domain.ClickKey) error
	ListClicks(ctx context.Context, limit int) ([]domain.ClickCount, error)

	// Idempotency cache, scoped per admin subject
	GetIdempotency(ctx context.Context, subject string, endpoint string, idemKeyHash string) (IdempotencyRecord, bool, error)
	PutIdempotency(ctx context.Context, subject string, endpoint string, idemKeyHash string, rec IdempotencyRecord) error
	PurgeExpiredIdempotency(ctx context.Context, now time.Time) (int64, error)
}

// NewItemID returns a random "itm_" prefixed identifier.
func NewItemID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return "itm_" + hex.EncodeToString(b[:])
}

// HashIdempotencyKey hashes an idempotency key deterministically.
func HashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// clickKeyHash is the primary key of a click counter row.
func clickKeyHash(k domain.ClickKey) string {
	sum := sha256.Sum256([]byte(k.ItemName + "\x00" + k.Merchant + "\x00" + k.URL))
	return hex.EncodeToString(sum[:])
}

func cloneItem(it domain.CatalogItem) domain.CatalogItem {
	if it.Description != nil {
		it.Description = append([]string(nil), it.Description...)
	}
	if it.Offers != nil {
		it.Offers = append([]domain.Offer(nil), it.Offers...)
	}
	return it
}
