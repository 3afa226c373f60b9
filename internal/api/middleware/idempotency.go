package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/ETAnderson/dealboard/internal/api/adminctx"
	"github.com/ETAnderson/dealboard/internal/state"
)

// HTTP header used for idempotent requests
const IdempotencyHeaderKey = "Idempotency-Key"

const idempotencyTTL = 24 * time.Hour

// maxIdempotentBody caps the request body buffered for replay; it matches
// the admin handlers' own limit.
const maxIdempotentBody = 1 << 20

// IdempotencyMiddleware replays the stored response of an admin write that
// repeats an Idempotency-Key. Keys are scoped per admin subject and path.
type IdempotencyMiddleware struct {
	Store state.Store
	Next  http.Handler
}

func (m IdempotencyMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.Next == nil || m.Store == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		m.Next.ServeHTTP(w, r)
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get(IdempotencyHeaderKey))
	if idemKey == "" {
		m.Next.ServeHTTP(w, r)
		return
	}

	endpoint := r.Method + " " + strings.TrimSpace(r.URL.Path)
	subject := adminctx.Subject(r.Context())
	keyHash := sha256Hex(idemKey)

	rec, ok, err := m.Store.GetIdempotency(r.Context(), subject, endpoint, keyHash)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"idempotency_lookup_failed"}`))
		return
	}

	if ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Idempotent-Replay", "true")

		status := rec.StatusCode
		if status == 0 {
			status = http.StatusOK
		}

		w.WriteHeader(status)
		_, _ = w.Write(rec.BodyJSON)
		return
	}

	if r.Body != nil {
		reqBody, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
		_ = r.Body.Close()
		if err != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_, _ = w.Write([]byte(`{"error":"body_too_large","message":"request body exceeds 1MB"}`))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	rr := httptest.NewRecorder()
	m.Next.ServeHTTP(rr, r)

	for k, vals := range rr.Header() {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}

	status := rr.Code
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	_, _ = w.Write(rr.Body.Bytes())

	// Server errors are not cached so the caller can retry with the same key.
	if status >= http.StatusInternalServerError {
		return
	}

	now := time.Now().UTC()
	_ = m.Store.PutIdempotency(r.Context(), subject, endpoint, keyHash, state.IdempotencyRecord{
		StatusCode: status,
		BodyJSON:   rr.Body.Bytes(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(idempotencyTTL),
	})
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
