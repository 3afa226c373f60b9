package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	return priv
}

func signWithIssuer(t *testing.T, priv *rsa.PrivateKey, issuer string) string {
	t.Helper()

	now := time.Now()
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestParseAndValidateRS256(t *testing.T) {
	priv := newKey(t)
	other := newKey(t)

	valid, err := SignRS256(priv, "alice", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	expired, _ := SignRS256(priv, "alice", RoleAdmin, -time.Hour)
	viewer, _ := SignRS256(priv, "bob", "viewer", time.Minute)
	noSub, _ := SignRS256(priv, "", RoleAdmin, time.Minute)
	foreign, _ := SignRS256(other, "mallory", RoleAdmin, time.Minute)
	wrongIssuer := signWithIssuer(t, priv, "someone-else")
	noIssuer := signWithIssuer(t, priv, "")

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid admin", valid, false},
		{"expired", expired, true},
		{"wrong role", viewer, true},
		{"missing subject", noSub, true},
		{"signed by other key", foreign, true},
		{"wrong issuer", wrongIssuer, true},
		{"missing issuer", noIssuer, true},
		{"garbage", "not-a-jwt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseAndValidateRS256(tt.token, &priv.PublicKey)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if claims.Subject != "alice" || claims.Issuer != Issuer {
				t.Fatalf("unexpected claims: %#v", claims)
			}
		})
	}
}

func TestParseAndValidateRS256_NilKey(t *testing.T) {
	if _, err := ParseAndValidateRS256("x", nil); err == nil {
		t.Fatalf("expected error for nil key")
	}
}

func TestLoadRSAPublicKeyFromEnv_SingleLinePEM(t *testing.T) {
	priv := newKey(t)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	t.Setenv("TEST_JWT_PUB", strings.ReplaceAll(pemText, "\n", `\n`))

	pub, err := LoadRSAPublicKeyFromEnv("TEST_JWT_PUB")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pub.N.Cmp(priv.PublicKey.N) != 0 {
		t.Fatalf("loaded key does not match")
	}
}

func TestLoadRSAPublicKeyFromEnv_Missing(t *testing.T) {
	t.Setenv("TEST_JWT_PUB_MISSING", "")

	if _, err := LoadRSAPublicKeyFromEnv("TEST_JWT_PUB_MISSING"); err == nil {
		t.Fatalf("expected error")
	}
}
