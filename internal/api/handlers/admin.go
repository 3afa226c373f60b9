package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ETAnderson/dealboard/internal/api/adminctx"
	"github.com/ETAnderson/dealboard/internal/catalog"
	"github.com/ETAnderson/dealboard/internal/domain"
	"github.com/ETAnderson/dealboard/internal/preview"
	"github.com/ETAnderson/dealboard/internal/state"
)

type Logger interface {
	Printf(format string, v ...any)
}

// AdminHandler serves catalog writes and the admin dashboards. Routes are
// mounted behind AuthMiddleware.
type AdminHandler struct {
	Store state.Store
	Log   Logger
}

func (h AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	it, ok := h.decodeValid(w, r, kind)
	if !ok {
		return
	}

	exists, err := h.Store.NameExists(r.Context(), kind, it.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "check_name_failed", err.Error())
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "duplicate_name", "an item with this name already exists")
		return
	}

	created, err := h.Store.CreateItem(r.Context(), it)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create_item_failed", err.Error())
		return
	}

	h.logf(r.Context(), "created %s %s (%q)", kind, created.ID, created.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"item": created})
}

func (h AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	it, ok := h.decodeValid(w, r, kind)
	if !ok {
		return
	}
	it.ID = id

	current, found, err := h.Store.GetItem(r.Context(), kind, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get_item_failed", err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}

	// renaming onto another item's name is a conflict
	if !strings.EqualFold(current.Name, it.Name) {
		exists, err := h.Store.NameExists(r.Context(), kind, it.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "check_name_failed", err.Error())
			return
		}
		if exists {
			writeError(w, http.StatusConflict, "duplicate_name", "an item with this name already exists")
			return
		}
	}

	updated, found, err := h.Store.UpdateItem(r.Context(), it)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "update_item_failed", err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}

	h.logf(r.Context(), "updated %s %s", kind, id)
	writeJSON(w, http.StatusOK, map[string]any{"item": updated})
}

func (h AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	deleted, err := h.Store.DeleteItem(r.Context(), kind, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete_item_failed", err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}

	h.logf(r.Context(), "deleted %s %s", kind, id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

// Clicks lists outbound click counters, most clicked first.
func (h AdminHandler) Clicks(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r, 100, 1000)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return
	}

	counts, err := h.Store.ListClicks(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_clicks_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": counts})
}

func (h AdminHandler) decodeValid(w http.ResponseWriter, r *http.Request, kind domain.Kind) (domain.CatalogItem, bool) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return domain.CatalogItem{}, false
	}

	it, err := catalog.DecodeItem(kind, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return domain.CatalogItem{}, false
	}

	if res := catalog.ValidateItem(it); !res.IsValid() {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation_failed",
			"issues": res.Issues,
		})
		return domain.CatalogItem{}, false
	}
	return it, true
}

func (h AdminHandler) logf(ctx context.Context, format string, v ...any) {
	if h.Log == nil {
		return
	}
	h.Log.Printf("admin=%s "+format, append([]any{adminctx.Subject(ctx)}, v...)...)
}

// Previewer is implemented by *preview.Fetcher.
type Previewer interface {
	Fetch(ctx context.Context, rawURL string) (preview.Preview, error)
}

type PreviewHandler struct {
	Fetcher Previewer
}

func (h PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	body, err := readBody(r)
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "body must be {\"url\": \"...\"}")
		return
	}

	p, err := h.Fetcher.Fetch(r.Context(), req.URL)
	if errors.Is(err, preview.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "invalid_url", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "preview_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}
