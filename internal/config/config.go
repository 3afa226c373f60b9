package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env string `env:"ENV" default:"dev"`

	Port string `env:"PORT" default:"8080"`

	StateBackend string `env:"STATE_BACKEND" default:"memory"` // memory | mysql | postgres
	DSN          string `env:"DB_DSN" default:""`              // required for mysql/postgres; mysql needs parseTime=true

	// Optional: run migrations at startup (dev convenience)
	RunMigrations bool   `env:"RUN_MIGRATIONS" default:"false"`
	MigrationsDir string `env:"MIGRATIONS_DIR" default:"./migrations"` // backend subdirectory is appended

	RedisAddr       string        `env:"REDIS_ADDR" default:""` // empty uses an in-process cache
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" default:"30s"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" default:""` // empty writes clicks straight to the store
	ClickTopic   string   `env:"CLICK_TOPIC" default:"deals.clicks"`
	ClickGroupID string   `env:"CLICK_GROUP_ID" default:"click-counter"`

	ClickRatePerSecond float64 `env:"CLICK_RATE_PER_SECOND" default:"5"`
	ClickRateBurst     int     `env:"CLICK_RATE_BURST" default:"10"`
	// Peers allowed to set X-Forwarded-For (addresses or CIDRs). Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES" default:""`

	PreviewTimeout time.Duration `env:"PREVIEW_TIMEOUT" default:"10s"`
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                getenv("ENV", "dev"),
		Port:               getenv("PORT", "8080"),
		StateBackend:       getenv("STATE_BACKEND", "memory"),
		DSN:                getenv("DB_DSN", ""),
		RunMigrations:      getenv("RUN_MIGRATIONS", "false") == "true",
		MigrationsDir:      getenv("MIGRATIONS_DIR", "./migrations"),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		CatalogCacheTTL:    getduration("CATALOG_CACHE_TTL", 30*time.Second),
		KafkaBrokers:       splitList(getenv("KAFKA_BROKERS", "")),
		ClickTopic:         getenv("CLICK_TOPIC", "deals.clicks"),
		ClickGroupID:       getenv("CLICK_GROUP_ID", "click-counter"),
		ClickRatePerSecond: getfloat("CLICK_RATE_PER_SECOND", 5),
		ClickRateBurst:     getint("CLICK_RATE_BURST", 10),
		TrustedProxies:     splitList(getenv("TRUSTED_PROXIES", "")),
		PreviewTimeout:     getduration("PREVIEW_TIMEOUT", 10*time.Second),
	}
	return cfg
}

func getenv(key string, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getint(key string, fallback int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getfloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
