package state

import (
	"strconv"
	"strings"
)

// Dialect holds the statements that differ between the SQL backends.
// Queries are written with "?" placeholders and rebound per dialect.
type Dialect struct {
	Name string

	numbered bool

	upsertClick       string
	upsertIdempotency string
}

var MySQL = Dialect{
	Name: "mysql",
	upsertClick: `INSERT INTO clicks (key_hash, item_name, merchant, url, click_count, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON DUPLICATE KEY UPDATE
		   click_count = click_count + 1,
		   updated_at = VALUES(updated_at)`,
	upsertIdempotency: `INSERT INTO idempotency (subject, endpoint, idem_key_hash, status_code, response_body_json, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   status_code = VALUES(status_code),
		   response_body_json = VALUES(response_body_json),
		   created_at = VALUES(created_at),
		   expires_at = VALUES(expires_at)`,
}

var Postgres = Dialect{
	Name:     "postgres",
	numbered: true,
	upsertClick: `INSERT INTO clicks (key_hash, item_name, merchant, url, click_count, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON CONFLICT (key_hash) DO UPDATE SET
		   click_count = clicks.click_count + 1,
		   updated_at = EXCLUDED.updated_at`,
	upsertIdempotency: `INSERT INTO idempotency (subject, endpoint, idem_key_hash, status_code, response_body_json, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (subject, endpoint, idem_key_hash) DO UPDATE SET
		   status_code = EXCLUDED.status_code,
		   response_body_json = EXCLUDED.response_body_json,
		   created_at = EXCLUDED.created_at,
		   expires_at = EXCLUDED.expires_at`,
}

// Rebind rewrites "?" placeholders into the dialect's form ($1, $2, ... for
// postgres). Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
