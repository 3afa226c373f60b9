package handlers

import (
	"crypto/rsa"
	"net/http"
	"net/netip"

	"github.com/gorilla/mux"

	"github.com/ETAnderson/dealboard/internal/api/middleware"
	"github.com/ETAnderson/dealboard/internal/clicks"
	"github.com/ETAnderson/dealboard/internal/state"
)

type Deps struct {
	Env       string
	PublicKey *rsa.PublicKey

	Store    state.Store
	Recorder clicks.Recorder
	Preview  Previewer
	Log      Logger

	ClickRatePerSecond float64
	ClickRateBurst     int
	TrustedProxies     []netip.Prefix
}

// Routes builds the public and admin HTTP surface.
func Routes(d Deps) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)

	cat := CatalogHandler{Store: d.Store}
	// fixed segments before {id}
	r.HandleFunc("/v1/catalog/{kind}", cat.List).Methods(http.MethodGet)
	r.HandleFunc("/v1/catalog/{kind}/sort-keys", cat.SortKeys).Methods(http.MethodGet)
	r.HandleFunc("/v1/catalog/{kind}/categories", cat.Categories).Methods(http.MethodGet)
	r.HandleFunc("/v1/catalog/{kind}/check-name", cat.CheckName).Methods(http.MethodGet)
	r.HandleFunc("/v1/catalog/{kind}/{id}", cat.Get).Methods(http.MethodGet)

	limiter := middleware.NewRateLimit(d.ClickRatePerSecond, d.ClickRateBurst, ClickHandler{Recorder: d.Recorder})
	limiter.TrustedProxies = d.TrustedProxies
	r.Handle("/v1/clicks", limiter).Methods(http.MethodPost)

	admin := r.PathPrefix("/v1/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return middleware.AuthMiddleware{
			Env:       d.Env,
			PublicKey: d.PublicKey,
			Next: middleware.IdempotencyMiddleware{
				Store: d.Store,
				Next:  next,
			},
		}
	})

	ah := AdminHandler{Store: d.Store, Log: d.Log}
	admin.HandleFunc("/catalog/{kind}", ah.Create).Methods(http.MethodPost)
	admin.HandleFunc("/catalog/{kind}/{id}", ah.Update).Methods(http.MethodPut)
	admin.HandleFunc("/catalog/{kind}/{id}", ah.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/clicks", ah.Clicks).Methods(http.MethodGet)
	admin.Handle("/preview", PreviewHandler{Fetcher: d.Preview}).Methods(http.MethodPost)

	return r
}
