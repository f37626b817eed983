package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// BaseTime is a fixed time for test records.
var BaseTime = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

// WriteHistory writes records as a history file into a temporary directory and returns the path.
func WriteHistory(t testing.TB, rs []api.Record) string {
	t.Helper()

	b, err := json.Marshal(rs)
	if err != nil {
		t.Fatalf("failed to encode history: %s", err)
	}

	path := filepath.Join(t.TempDir(), "health_history.json")
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatalf("failed to write history: %s", err)
	}
	return path
}

// ReadHistory reads a history file.
func ReadHistory(t testing.TB, path string) []api.Record {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read history: %s", err)
	}

	var rs []api.Record
	if err := json.Unmarshal(b, &rs); err != nil {
		t.Fatalf("failed to parse history: %s", err)
	}
	return rs
}

// ReadSnapshot reads a snapshot file.
func ReadSnapshot(t testing.TB, path string) []api.SnapshotEntry {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read snapshot: %s", err)
	}

	var es []api.SnapshotEntry
	if err := json.Unmarshal(b, &es); err != nil {
		t.Fatalf("failed to parse snapshot: %s", err)
	}
	return es
}
