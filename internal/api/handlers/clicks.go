package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ETAnderson/dealboard/internal/clicks"
)

// ClickHandler records an outbound click on an offer link.
type ClickHandler struct {
	Recorder clicks.Recorder
	Now      func() time.Time
}

func (h ClickHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var ev clicks.ClickEvent
	body, err := readBody(r)
	if err == nil {
		err = json.Unmarshal(body, &ev)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	// the server clock decides when a click happened
	ev.At = time.Time{}
	ev = clicks.Normalize(ev, now())
	if err := clicks.Validate(ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_click", "item_name, merchant and url are required")
		return
	}

	if err := h.Recorder.Record(r.Context(), ev); err != nil {
		writeError(w, http.StatusInternalServerError, "record_click_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"success": true})
}
