package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ETAnderson/dealboard/internal/domain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string, msg string) {
	writeJSON(w, status, map[string]any{
		"error":   code,
		"message": msg,
	})
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// kindFromPath resolves {kind}; it writes a 404 and returns false when the
// kind is unknown.
func kindFromPath(w http.ResponseWriter, r *http.Request) (domain.Kind, bool) {
	raw := mux.Vars(r)["kind"]
	kind, ok := domain.ParseKind(raw)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_kind", "unknown catalog kind: "+raw)
		return "", false
	}
	return kind, true
}

// queryLimit parses ?limit= with a default and an upper bound. A value that
// is not a positive integer is rejected.
func queryLimit(r *http.Request, def int, max int) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	if max > 0 && n > max {
		n = max
	}
	return n, true
}
