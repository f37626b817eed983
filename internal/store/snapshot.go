package store

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/storecheck/storecheck/internal/checkerr"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// SnapshotWriter writes the snapshot file. The file is overwritten on every run.
type SnapshotWriter struct {
	Path string
}

// WriteSnapshot writes the entries as a JSON array.
func (w SnapshotWriter) WriteSnapshot(entries []api.SnapshotEntry) error {
	return WriteSnapshot(w.Path, entries)
}

// WriteSnapshot writes the entries to path as a JSON array.
func WriteSnapshot(path string, entries []api.SnapshotEntry) error {
	if entries == nil {
		entries = []api.SnapshotEntry{}
	}
	if err := writeJSON(path, entries); err != nil {
		return checkerr.New(api.ErrIO, err, "failed to write snapshot")
	}
	return nil
}

// ReadSnapshot reads a snapshot file.
func ReadSnapshot(path string) ([]api.SnapshotEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var es []api.SnapshotEntry
	if err := json.Unmarshal(b, &es); err != nil {
		return nil, checkerr.New(api.ErrInvalidRecord, err, "failed to parse snapshot %s", path)
	}
	return es, nil
}
