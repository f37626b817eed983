package endpoint

import (
	_ "embed"
	"net/http"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

//go:embed templates/status.txt
var statusTextTemplate string

var templateFuncs = template.FuncMap{
	"humanize_time": func(t time.Time) string {
		return humanize.Time(t)
	},
	"latency": func(d time.Duration) string {
		return humanize.Comma(d.Milliseconds()) + "ms"
	},
	"status_mark": func(s api.Status) string {
		switch s {
		case api.StatusHealthy:
			return "[ OK ]"
		case api.StatusDegraded:
			return "[WARN]"
		default:
			return "[FAIL]"
		}
	},
}

func StatusTextEndpoint(latest *Latest, logger zerolog.Logger) http.HandlerFunc {
	tmpl := template.Must(template.New("status.txt").Funcs(templateFuncs).Parse(statusTextTemplate))

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")

		if err := tmpl.Execute(w, latest.Get()); err != nil {
			logger.Error().Err(err).Str("endpoint", "status.txt").Msg("failed to render")
		}
	}
}

func StatusJSONEndpoint(latest *Latest, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")

		if err := json.NewEncoder(w).Encode(latest.Get()); err != nil {
			logger.Error().Err(err).Str("endpoint", "status.json").Msg("failed to encode")
		}
	}
}
