// Package endpoint serves the latest report over HTTP in serve mode.
package endpoint

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// ErrorsGetter reports the health of the history store.
type ErrorsGetter interface {
	Errors() (healthy bool, messages []string)
}

// Store is the history store that the handler reads.
type Store interface {
	ErrorsGetter
	Records() []api.Record
}

// New creates the HTTP handler.
func New(latest *Latest, s Store, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  &logger,
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/status.txt", http.StatusFound)
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/status.txt", http.StatusMovedPermanently)
	})
	r.Get("/status.txt", StatusTextEndpoint(latest, logger))
	r.Get("/status.json", StatusJSONEndpoint(latest, logger))
	r.Get("/healthz", HealthzEndpoint(latest, s, logger))
	r.Handle("/mcp", MCPHandler(latest, s))

	return gziphandler.GzipHandler(r)
}
