package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ETAnderson/dealboard/internal/domain"
)

// SQLStore persists the catalog in MySQL or Postgres. Offers live in
// item_offers ordered by position; specs and description are JSON columns.
type SQLStore struct {
	db *sql.DB
	d  Dialect
}

func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, d: d}
}

const itemColumns = `id, kind, name, category, image, description_json, specs_json, created_at, updated_at`

func (s *SQLStore) ListItems(ctx context.Context, kind domain.Kind) ([]domain.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, s.d.Rebind(
		`SELECT `+itemColumns+` FROM items WHERE kind = ? ORDER BY created_at DESC, id DESC`),
		string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CatalogItem, 0, 32)
	index := make(map[string]int)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	offerRows, err := s.db.QueryContext(ctx, s.d.Rebind(
		`SELECT o.item_id, o.merchant, o.price, o.url, o.rating, o.reviews
		 FROM item_offers o
		 JOIN items i ON i.id = o.item_id
		 WHERE i.kind = ?
		 ORDER BY o.item_id, o.position`),
		string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer offerRows.Close()

	for offerRows.Next() {
		var itemID string
		var o domain.Offer
		if err := offerRows.Scan(&itemID, &o.Merchant, &o.Price, &o.URL, &o.Rating, &o.Reviews); err != nil {
			return nil, err
		}
		if i, ok := index[itemID]; ok {
			out[i].Offers = append(out[i].Offers, o)
		}
	}
	return out, offerRows.Err()
}

func (s *SQLStore) GetItem(ctx context.Context, kind domain.Kind, id string) (domain.CatalogItem, bool, error) {
	row := s.db.QueryRowContext(ctx, s.d.Rebind(
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND kind = ?`),
		id, string(kind),
	)

	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogItem{}, false, nil
	}
	if err != nil {
		return domain.CatalogItem{}, false, err
	}

	offers, err := s.loadOffers(ctx, it.ID)
	if err != nil {
		return domain.CatalogItem{}, false, err
	}
	it.Offers = offers
	return it, true, nil
}

func (s *SQLStore) CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	now := time.Now().UTC()
	item = cloneItem(item)
	item.ID = NewItemID()
	item.CreatedAt = now
	item.UpdatedAt = now

	desc, specs, err := encodeItemJSON(item)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.d.Rebind(
			`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			item.ID, string(item.Kind), item.Name, item.Category, item.Image, string(desc), string(specs), item.CreatedAt, item.UpdatedAt,
		); err != nil {
			return err
		}
		return s.insertOffers(ctx, tx, item.ID, item.Offers)
	})
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return item, nil
}

func (s *SQLStore) UpdateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, bool, error) {
	item = cloneItem(item)
	item.UpdatedAt = time.Now().UTC()

	desc, specs, err := encodeItemJSON(item)
	if err != nil {
		return domain.CatalogItem{}, false, err
	}

	found := false
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var created time.Time
		err := tx.QueryRowContext(ctx, s.d.Rebind(
			`SELECT created_at FROM items WHERE id = ? AND kind = ?`),
			item.ID, string(item.Kind),
		).Scan(&created)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		item.CreatedAt = created.UTC()

		if _, err := tx.ExecContext(ctx, s.d.Rebind(
			`UPDATE items SET name = ?, category = ?, image = ?, description_json = ?, specs_json = ?, updated_at = ?
			 WHERE id = ?`),
			item.Name, item.Category, item.Image, string(desc), string(specs), item.UpdatedAt, item.ID,
		); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.d.Rebind(`DELETE FROM item_offers WHERE item_id = ?`), item.ID); err != nil {
			return err
		}
		return s.insertOffers(ctx, tx, item.ID, item.Offers)
	})
	if err != nil || !found {
		return domain.CatalogItem{}, false, err
	}
	return item, true, nil
}

func (s *SQLStore) DeleteItem(ctx context.Context, kind domain.Kind, id string) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.d.Rebind(`DELETE FROM items WHERE id = ? AND kind = ?`), id, string(kind))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		deleted = true
		_, err = tx.ExecContext(ctx, s.d.Rebind(`DELETE FROM item_offers WHERE item_id = ?`), id)
		return err
	})
	return deleted, err
}

func (s *SQLStore) NameExists(ctx context.Context, kind domain.Kind, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.d.Rebind(
		`SELECT COUNT(*) FROM items WHERE kind = ? AND LOWER(TRIM(name)) = ?`),
		string(kind), strings.ToLower(strings.TrimSpace(name)),
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) IncrementClick(ctx context.Context, key domain.ClickKey) error {
	_, err := s.db.ExecContext(ctx, s.d.Rebind(s.d.upsertClick),
		clickKeyHash(key), key.ItemName, key.Merchant, key.URL, time.Now().UTC(),
	)
	return err
}

func (s *SQLStore) ListClicks(ctx context.Context, limit int) ([]domain.ClickCount, error) {
	q := `SELECT item_name, merchant, url, click_count, updated_at
		 FROM clicks
		 ORDER BY click_count DESC, item_name, merchant, url`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.d.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ClickCount, 0, 32)
	for rows.Next() {
		var c domain.ClickCount
		if err := rows.Scan(&c.ItemName, &c.Merchant, &c.URL, &c.Count, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.UpdatedAt = c.UpdatedAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetIdempotency(ctx context.Context, subject string, endpoint string, idemKeyHash string) (IdempotencyRecord, bool, error) {
	var status int
	var body []byte
	var created time.Time
	var expires time.Time

	err := s.db.QueryRowContext(ctx, s.d.Rebind(
		`SELECT status_code, response_body_json, created_at, expires_at
		 FROM idempotency
		 WHERE subject = ? AND endpoint = ? AND idem_key_hash = ?`),
		subject, endpoint, idemKeyHash,
	).Scan(&status, &body, &created, &expires)

	if errors.Is(err, sql.ErrNoRows) {
		return IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	if time.Now().UTC().After(expires.UTC()) {
		return IdempotencyRecord{}, false, nil
	}

	return IdempotencyRecord{
		StatusCode: status,
		BodyJSON:   body,
		CreatedAt:  created.UTC(),
		ExpiresAt:  expires.UTC(),
	}, true, nil
}

func (s *SQLStore) PutIdempotency(ctx context.Context, subject string, endpoint string, idemKeyHash string, rec IdempotencyRecord) error {
	_, err := s.db.ExecContext(ctx, s.d.Rebind(s.d.upsertIdempotency),
		subject, endpoint, idemKeyHash, rec.StatusCode, rec.BodyJSON, rec.CreatedAt.UTC(), rec.ExpiresAt.UTC(),
	)
	return err
}

func (s *SQLStore) PurgeExpiredIdempotency(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.d.Rebind(`DELETE FROM idempotency WHERE expires_at < ?`), now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLStore) loadOffers(ctx context.Context, itemID string) ([]domain.Offer, error) {
	rows, err := s.db.QueryContext(ctx, s.d.Rebind(
		`SELECT merchant, price, url, rating, reviews FROM item_offers WHERE item_id = ? ORDER BY position`),
		itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.Merchant, &o.Price, &o.URL, &o.Rating, &o.Reviews); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) insertOffers(ctx context.Context, tx *sql.Tx, itemID string, offers []domain.Offer) error {
	q := s.d.Rebind(`INSERT INTO item_offers (item_id, position, merchant, price, url, rating, reviews)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, o := range offers {
		if _, err := tx.ExecContext(ctx, q, itemID, i, o.Merchant, o.Price, o.URL, o.Rating, o.Reviews); err != nil {
			return fmt.Errorf("insert offer %d: %w", i, err)
		}
	}
	return nil
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (domain.CatalogItem, error) {
	var it domain.CatalogItem
	var kind string
	var desc, specs []byte

	if err := r.Scan(&it.ID, &kind, &it.Name, &it.Category, &it.Image, &desc, &specs, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return domain.CatalogItem{}, err
	}
	it.Kind = domain.Kind(kind)
	it.CreatedAt = it.CreatedAt.UTC()
	it.UpdatedAt = it.UpdatedAt.UTC()

	if len(desc) > 0 {
		if err := json.Unmarshal(desc, &it.Description); err != nil {
			return domain.CatalogItem{}, fmt.Errorf("item %s description: %w", it.ID, err)
		}
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &it.Specs); err != nil {
			return domain.CatalogItem{}, fmt.Errorf("item %s specs: %w", it.ID, err)
		}
	}
	return it, nil
}

func encodeItemJSON(it domain.CatalogItem) (desc []byte, specs []byte, err error) {
	d := it.Description
	if d == nil {
		d = []string{}
	}
	if desc, err = json.Marshal(d); err != nil {
		return nil, nil, err
	}
	if specs, err = json.Marshal(it.Specs); err != nil {
		return nil, nil, err
	}
	return desc, specs, nil
}
