package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ETAnderson/dealboard/internal/api/auth"
	"github.com/ETAnderson/dealboard/internal/ranking"
)

const catalogJSON = `[
  {"name": "Pixel 9", "kind": "phone", "category": "Flagship", "specs": {"camera": "50MP"},
   "offers": [{"merchant": "Amazon", "price": 699, "url": "https://a", "rating": 4.5, "reviews": 10},
              {"merchant": "Shop", "price": 649, "url": "https://b", "rating": 4.8, "reviews": 3}]},
  {"name": "Galaxy A15", "category": "Budget", "specs": {"camera": "108 MP"},
   "offers": [{"merchant": "Amazon", "price": 199, "url": "https://c", "rating": 4.1, "reviews": 99}]},
  {"name": "ThinkPad", "kind": "laptop", "offers": []}
]`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(p, []byte(catalogJSON), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestRank_JSONKindFilterAndSort(t *testing.T) {
	out, err := run(t, "rank", "--file", writeCatalog(t), "--kind", "phone", "--sort", "camera_megapixels_descending", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var ranked []ranking.RankedItem
	if err := json.Unmarshal([]byte(out), &ranked); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected laptop filtered out, got %d items", len(ranked))
	}
	if ranked[0].Name != "Galaxy A15" || ranked[1].Name != "Pixel 9" {
		t.Fatalf("unexpected order: %s, %s", ranked[0].Name, ranked[1].Name)
	}
}

func TestRank_TableMarksBestAndTop(t *testing.T) {
	out, err := run(t, "rank", "--file", writeCatalog(t), "--kind", "phone", "--q", "pixel")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "1. Pixel 9") {
		t.Fatalf("missing item line:\n%s", out)
	}
	if !strings.Contains(out, "649.00  4.8 (3 reviews) [BEST DEAL] [TOP RATED]") {
		t.Fatalf("missing markers:\n%s", out)
	}
	if strings.Contains(out, "Galaxy") {
		t.Fatalf("search did not filter:\n%s", out)
	}
}

func TestRank_Errors(t *testing.T) {
	file := writeCatalog(t)
	cases := [][]string{
		{"rank", "--file", file, "--kind", "boat"},
		{"rank", "--file", file, "--kind", "pencil", "--sort", "antutu_descending"},
		{"rank", "--file", file, "--format", "xml"},
		{"rank", "--file", filepath.Join(t.TempDir(), "missing.json")},
		{"rank"},
	}
	for _, args := range cases {
		if _, err := run(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		0:         "0.00",
		999.5:     "999.50",
		1234:      "1,234.00",
		1234567.5: "1,234,567.50",
		-1500:     "-1,500.00",
	}
	for in, want := range cases {
		if got := formatPrice(in); got != want {
			t.Fatalf("formatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestGenKeysAndMintToken(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "gen-keys", dir)
	if err != nil {
		t.Fatalf("gen-keys: %v", err)
	}
	if !strings.Contains(out, "jwt_public.pem") {
		t.Fatalf("unexpected output: %s", out)
	}

	privPEM, err := os.ReadFile(filepath.Join(dir, "jwt_private.pem"))
	if err != nil {
		t.Fatalf("read private: %v", err)
	}
	pubPEM, err := os.ReadFile(filepath.Join(dir, "jwt_public.pem"))
	if err != nil {
		t.Fatalf("read public: %v", err)
	}

	t.Setenv("TEST_PRIV_PEM", string(privPEM))
	t.Setenv("TEST_PUB_PEM", string(pubPEM))

	tok, err := run(t, "mint-token", "--env", "TEST_PRIV_PEM", "--sub", "alice")
	if err != nil {
		t.Fatalf("mint-token: %v", err)
	}

	pub, err := auth.LoadRSAPublicKeyFromEnv("TEST_PUB_PEM")
	if err != nil {
		t.Fatalf("load public: %v", err)
	}
	claims, err := auth.ParseAndValidateRS256(strings.TrimSpace(tok), pub)
	if err != nil {
		t.Fatalf("minted token rejected: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
}

func TestMigrate_RequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	if _, err := run(t, "migrate", "--backend", "mysql"); err == nil {
		t.Fatalf("expected error without dsn")
	}
	if _, err := run(t, "migrate", "--backend", "oracle", "--dsn", "x"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
