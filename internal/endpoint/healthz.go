package endpoint

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

type healthzError struct {
	Time    string `json:"time,omitempty"`
	Message string `json:"message"`
}

type healthzResponse struct {
	Status         string         `json:"status"`
	HistoryRecords int            `json:"history_records"`
	LastRun        string         `json:"last_run,omitempty"`
	Errors         []healthzError `json:"errors"`
}

// splitError splits "{time}\t{message}" reported by the history store.
func splitError(s string) healthzError {
	if t, msg, ok := strings.Cut(s, "\t"); ok {
		return healthzError{Time: t, Message: msg}
	}
	return healthzError{Message: s}
}

// HealthzEndpoint reports whether the history store can persist records.
// It answers 503 while the last write of the history has failed.
func HealthzEndpoint(latest *Latest, s Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy, messages := s.Errors()

		resp := healthzResponse{
			Status:         "healthy",
			HistoryRecords: len(s.Records()),
			Errors:         make([]healthzError, 0, len(messages)),
		}
		if rep := latest.Get(); !rep.GeneratedAt.IsZero() {
			resp.LastRun = api.FormatTime(rep.GeneratedAt)
		}
		for _, msg := range messages {
			resp.Errors = append(resp.Errors, splitError(msg))
		}

		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		if !healthy {
			resp.Status = "failure"
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error().Err(err).Str("endpoint", "healthz").Msg("failed to encode")
		}
	}
}
