// Package store persists the check history and the snapshot file.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/storecheck/storecheck/internal/checkerr"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

const (
	// DefaultCapacity is the default maximum number of records in the history.
	DefaultCapacity = 100

	maxErrors = 10
)

// History is the bounded, append-only log of check records.
//
// The log is kept in memory after Load, and the whole log is written to the file on each Append.
// If path is empty, the history is kept only in memory.
type History struct {
	path     string
	capacity int
	logger   zerolog.Logger

	mu      sync.Mutex
	records []api.Record
	loaded  bool

	errorsLock sync.RWMutex
	errors     []string
	healthy    bool
}

// NewHistory creates a new History.
// DefaultCapacity is used if capacity is not positive.
func NewHistory(path string, capacity int, logger zerolog.Logger) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &History{
		path:     path,
		capacity: capacity,
		logger:   logger,
		healthy:  true,
	}
}

// Path returns path to the history file.
func (h *History) Path() string {
	return h.path
}

// Capacity returns the maximum number of records.
func (h *History) Capacity() int {
	return h.capacity
}

// Load returns a copy of the log.
// The file is read only on the first call; after that the in-memory log is the source of truth, so records whose write failed are kept.
//
// It never fails. A missing file is a cold start, and an unreadable or broken file is reported as a warning and treated as an empty log.
func (h *History) Load() []api.Record {
	return h.Records()
}

// Records returns a copy of the current log, reading the file if it has not been read yet.
func (h *History) Records() []api.Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.loaded {
		h.loadWithoutLock()
	}
	return h.snapshotWithoutLock()
}

func (h *History) snapshotWithoutLock() []api.Record {
	rs := make([]api.Record, len(h.records))
	copy(rs, h.records)
	return rs
}

func (h *History) loadWithoutLock() {
	h.loaded = true
	h.records = nil

	if h.path == "" {
		return
	}

	rs, err := ReadHistory(h.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		h.logger.Debug().Str("path", h.path).Msg("no history yet")
	case err != nil:
		h.logger.Warn().Err(err).Str("path", h.path).Msg("failed to load history; starting from empty history")
	default:
		h.records = trim(rs, h.capacity)
	}
}

// ReadHistory reads a history file.
func ReadHistory(path string) ([]api.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseHistory(b, path)
}

// DecodeHistory reads a history from r.
// The name is used in error messages.
func DecodeHistory(r io.Reader, name string) ([]api.Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseHistory(b, name)
}

// ParseHistory parses a JSON array of records.
func ParseHistory(b []byte, name string) ([]api.Record, error) {
	var rs []api.Record
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, checkerr.New(api.ErrInvalidRecord, err, "failed to parse history %s", name)
	}
	return rs, nil
}

// Append appends records to the log, drops the oldest records over the capacity, and writes the whole log to the file.
//
// The in-memory log is updated even if writing the file failed.
// The failure is returned, and also reported via Errors.
func (h *History) Append(rs []api.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.loaded {
		h.loadWithoutLock()
	}

	h.records = trim(append(h.records, rs...), h.capacity)

	if h.path == "" {
		return nil
	}

	if err := writeJSON(h.path, h.records); err != nil {
		h.addError("failed to write history")
		return checkerr.New(api.ErrIO, err, "failed to write history")
	}

	h.setHealthy()
	return nil
}

func trim(rs []api.Record, capacity int) []api.Record {
	if len(rs) <= capacity {
		return rs
	}
	trimmed := make([]api.Record, capacity)
	copy(trimmed, rs[len(rs)-capacity:])
	return trimmed
}

// setHealthy is reset healthy status of this store.
// This status is reported by Errors method.
func (h *History) setHealthy() {
	h.errorsLock.Lock()
	defer h.errorsLock.Unlock()

	h.healthy = true
}

// addError adds error message for Errors method, and set healthy status to false.
func (h *History) addError(message string) {
	h.errorsLock.Lock()
	defer h.errorsLock.Unlock()

	h.healthy = false
	h.errors = append(
		h.errors,
		fmt.Sprintf("%s\t%s", time.Now().Format(time.RFC3339), message),
	)

	if len(h.errors) > maxErrors {
		h.errors = h.errors[1:]
	}
}

// Errors returns store status and error logs.
func (h *History) Errors() (healthy bool, messages []string) {
	h.errorsLock.RLock()
	defer h.errorsLock.RUnlock()

	ms := make([]string, len(h.errors))
	copy(ms, h.errors)
	return h.healthy, ms
}

// writeJSON writes v to path as indented JSON.
// The file is written to a temporary file in the same directory and then renamed, so readers never see a partial file.
func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
