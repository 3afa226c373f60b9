package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ETAnderson/dealboard/internal/domain"
	"github.com/ETAnderson/dealboard/internal/ranking"
	"github.com/ETAnderson/dealboard/internal/state"
)

// CatalogHandler serves the public, read-only catalog routes.
type CatalogHandler struct {
	Store state.Store
}

// List ranks the kind's items: ?sort= ?q= ?category= ?limit=.
func (h CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	sortKey, err := ranking.ParseSortKey(kind, q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_sort_key", err.Error())
		return
	}

	limit, ok := queryLimit(r, 0, 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return
	}

	items, err := h.Store.ListItems(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_items_failed", err.Error())
		return
	}

	ranked, err := ranking.Rank(items, ranking.Query{
		Kind:     kind,
		Sort:     sortKey,
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Limit:    limit,
	})
	if err != nil {
		// ParseSortKey already accepted the key, so this is unexpected.
		writeError(w, http.StatusInternalServerError, "rank_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":  kind,
		"sort":  sortKey,
		"count": len(ranked),
		"items": ranked,
	})
}

func (h CatalogHandler) SortKeys(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":    kind,
		"default": ranking.DefaultSortKey,
		"items":   ranking.SortKeysFor(kind),
	})
}

func (h CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	items, err := h.Store.ListItems(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_items_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":  kind,
		"items": ranking.Categories(items),
	})
}

func (h CatalogHandler) CheckName(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "name query parameter is required")
		return
	}

	exists, err := h.Store.NameExists(r.Context(), kind, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "check_name_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"exists": exists})
}

// Get returns one item with its offers annotated.
func (h CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	it, found, err := h.Store.GetItem(r.Context(), kind, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get_item_failed", err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}

	ranked, err := ranking.Rank([]domain.CatalogItem{it}, ranking.Query{Kind: kind, Sort: ranking.DefaultSortKey})
	if err != nil || len(ranked) != 1 {
		if err == nil {
			err = errors.New("item dropped by ranking")
		}
		writeError(w, http.StatusInternalServerError, "rank_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"item": ranked[0]})
}
