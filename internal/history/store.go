// Package history holds the durable, bounded alert history.
//
// The store owns two files inside its data directory: the serialized
// history (which embeds the checkpoint it corresponds to) and the
// standalone checkpoint cursor. Both are replaced atomically via
// write-to-temp-then-rename, so a crash mid-write leaves the previous
// state intact. The history file is written first and is authoritative;
// the cursor file is consulted only when no history file exists, which
// means a crash between the two writes can never leave the trusted
// checkpoint ahead of the records it claims were stored.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/evewatch/evewatch/internal/models"
)

const (
	historyFile    = "alerts_history.json"
	checkpointFile = "checkpoint.json"
)

type envelope struct {
	Version    int                  `json:"version"`
	SavedAt    time.Time            `json:"saved_at"`
	Checkpoint models.Checkpoint    `json:"checkpoint"`
	Records    []models.AlertRecord `json:"records"`
}

// Store is an append-only, capacity-bounded collection of alert records.
// Records enter through Append in ingestion order and leave only through
// eviction or Clear. All methods are safe for concurrent use.
type Store struct {
	historyPath    string
	checkpointPath string
	capacity       int

	mu      sync.RWMutex
	records []models.AlertRecord
	ckpt    models.Checkpoint
}

// Open loads or initializes a store rooted at dir, bounded at capacity
// records. A missing history file is a fresh start, not an error.
func Open(dir string, capacity int) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("history capacity must be positive, got %d", capacity)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{
		historyPath:    filepath.Join(dir, historyFile),
		checkpointPath: filepath.Join(dir, checkpointFile),
		capacity:       capacity,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read history: %w", err)
		}
		// No history yet. The cursor file alone survives some
		// lifecycles (e.g. an operator deleting just the history), so
		// honor it rather than re-ingesting the whole source log.
		return s.loadCheckpointOnly()
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("parse history %s: %w", s.historyPath, err)
	}

	s.records = env.Records
	s.ckpt = env.Checkpoint
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
	return nil
}

func (s *Store) loadCheckpointOnly() error {
	data, err := os.ReadFile(s.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read checkpoint: %w", err)
	}
	var ckpt models.Checkpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return fmt.Errorf("parse checkpoint %s: %w", s.checkpointPath, err)
	}
	s.ckpt = ckpt
	return nil
}

// Append adds records in order to the tail, advances the checkpoint, and
// persists both in one critical section. Once over capacity, the oldest
// records are evicted until the bound holds; the count evicted is
// returned.
//
// A persistence failure does not roll back the in-memory state: the
// previous on-disk state stands untouched (at most one batch behind
// memory) and the error is surfaced for the caller to log.
func (s *Store) Append(records []models.AlertRecord, ckpt models.Checkpoint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, records...)
	evicted := 0
	if len(s.records) > s.capacity {
		evicted = len(s.records) - s.capacity
		s.records = s.records[evicted:]
	}
	s.ckpt = ckpt

	if err := s.persistLocked(); err != nil {
		return evicted, err
	}
	return evicted, nil
}

// ReadRecent returns up to limit records, newest first by storage order.
// A limit of zero or less returns the full bounded set. The returned
// slice is a copy; callers may not mutate stored records through it.
func (s *Store) ReadRecent(limit int) []models.AlertRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.AlertRecord, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// Snapshot returns a copy of all records in storage order, oldest first.
func (s *Store) Snapshot() []models.AlertRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlertRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the current number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Checkpoint returns the current ingestion checkpoint.
func (s *Store) Checkpoint() models.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ckpt
}

// Clear empties the store and persists the empty state, returning the
// number of records removed. The checkpoint is deliberately left
// advanced: resetting it would re-ingest, on the next query, alerts the
// operator just cleared.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.records)
	s.records = nil

	if err := s.persistLocked(); err != nil {
		return removed, err
	}
	return removed, nil
}

// persistLocked writes the history envelope, then the cursor file. The
// caller must hold mu.
func (s *Store) persistLocked() error {
	env := envelope{
		Version:    1,
		SavedAt:    time.Now().UTC(),
		Checkpoint: s.ckpt,
		Records:    s.records,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := writeFileAtomic(s.historyPath, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	ckptData, err := json.Marshal(s.ckpt)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := writeFileAtomic(s.checkpointPath, ckptData); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path via a temp file in the same directory so
// a partial write can never be observed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
