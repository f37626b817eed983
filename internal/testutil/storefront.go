// Package testutil has helpers for tests of storecheck.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// StartStorefront starts a dummy shop server.
//
//	/ok          responds 200 immediately
//	/slow?ms=N   responds 200 after N milliseconds
//	/error       responds 503
func StartStorefront(t testing.TB) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		ms, _ := strconv.Atoi(r.URL.Query().Get("ms"))
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
			w.Write([]byte("slow"))
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// WriteCatalog writes a catalog file into a temporary directory and returns the path.
// "{{URL}}" in the content is replaced with baseURL.
func WriteCatalog(t testing.TB, baseURL, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content = strings.ReplaceAll(content, "{{URL}}", baseURL)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog: %s", err)
	}
	return path
}
