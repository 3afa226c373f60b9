package state

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ETAnderson/dealboard/internal/db"
)

type FactoryConfig struct {
	Backend string
	DSN     string
}

type FactoryResult struct {
	Store   Store
	DB      *sql.DB // nil for memory
	Dialect Dialect
}

func NewStore(ctx context.Context, cfg FactoryConfig) (FactoryResult, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "memory"
	}

	var d Dialect
	switch backend {
	case "memory":
		return FactoryResult{Store: NewMemoryStore()}, nil
	case "mysql":
		d = MySQL
	case "postgres":
		d = Postgres
	default:
		return FactoryResult{}, errors.New("unknown STATE_BACKEND (use memory, mysql or postgres)")
	}

	if strings.TrimSpace(cfg.DSN) == "" {
		return FactoryResult{}, errors.New("DB_DSN is required when STATE_BACKEND=" + backend)
	}

	sqlDB, err := db.Open(db.Config{Backend: backend, DSN: cfg.DSN})
	if err != nil {
		return FactoryResult{}, err
	}

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(c); err != nil {
		_ = sqlDB.Close()
		return FactoryResult{}, err
	}

	return FactoryResult{
		Store:   NewSQLStore(sqlDB, d),
		DB:      sqlDB,
		Dialect: d,
	}, nil
}
