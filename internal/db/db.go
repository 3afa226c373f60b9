package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Config struct {
	// Backend is "mysql" or "postgres".
	Backend string
	DSN     string
}

// DriverName maps a backend name to its registered database/sql driver.
func DriverName(backend string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "postgres", "postgresql", "pgx":
		return "pgx"
	default:
		return "mysql"
	}
}

func Open(cfg Config) (*sql.DB, error) {
	db, err := sql.Open(DriverName(cfg.Backend), cfg.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.PingContext(c)
}
