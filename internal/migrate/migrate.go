package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ApplyDir runs every *.sql file in dir, in name order, that is not yet
// recorded in schema_migrations. backend selects placeholder style and the
// bookkeeping table DDL ("mysql" or "postgres").
func ApplyDir(ctx context.Context, db *sql.DB, backend string, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, filepath.Join(dir, name))
		}
	}

	sort.Strings(files)

	pg := isPostgres(backend)

	if err := ensureSchemaMigrations(ctx, db, pg); err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(files))
	for _, path := range files {
		name := filepath.Base(path)

		done, err := isApplied(ctx, db, pg, name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		sqlBytes, err := os.ReadFile(path)
		if err != nil {
			return applied, err
		}

		for i, stmt := range SplitStatements(string(sqlBytes)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return applied, fmt.Errorf("migration %s statement %d failed: %w", name, i+1, err)
			}
		}

		if err := markApplied(ctx, db, pg, name); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}

	return applied, nil
}

// SplitStatements breaks a migration file on semicolons that end a line.
// Lines starting with "--" are dropped.
func SplitStatements(src string) []string {
	var out []string
	var cur strings.Builder

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')

		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")); stmt != "" {
				out = append(out, stmt)
			}
			cur.Reset()
		}
	}

	if stmt := strings.TrimSpace(cur.String()); stmt != "" {
		out = append(out, stmt)
	}
	return out
}

func isPostgres(backend string) bool {
	b := strings.ToLower(strings.TrimSpace(backend))
	return b == "postgres" || b == "postgresql" || b == "pgx"
}

func ensureSchemaMigrations(ctx context.Context, db *sql.DB, pg bool) error {
	ddl := `
CREATE TABLE IF NOT EXISTS schema_migrations (
  name VARCHAR(255) NOT NULL,
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (name)
) ENGINE=InnoDB`
	if pg {
		ddl = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  name VARCHAR(255) NOT NULL PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func isApplied(ctx context.Context, db *sql.DB, pg bool, name string) (bool, error) {
	q := `SELECT name FROM schema_migrations WHERE name = ?`
	if pg {
		q = `SELECT name FROM schema_migrations WHERE name = $1`
	}

	var v string
	err := db.QueryRowContext(ctx, q, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func markApplied(ctx context.Context, db *sql.DB, pg bool, name string) error {
	q := `INSERT INTO schema_migrations (name) VALUES (?)`
	if pg {
		q = `INSERT INTO schema_migrations (name) VALUES ($1)`
	}
	_, err := db.ExecContext(ctx, q, name)
	return err
}
