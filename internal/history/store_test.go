package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evewatch/evewatch/internal/models"
)

func record(id string, storedAt time.Time) models.AlertRecord {
	return models.AlertRecord{
		ID:       id,
		StoredAt: storedAt,
		Raw: map[string]interface{}{
			"event_type": "alert",
			"alert":      map[string]interface{}{"severity": float64(2)},
		},
	}
}

func records(n int, start time.Time) []models.AlertRecord {
	out := make([]models.AlertRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, record(fmt.Sprintf("rec-%d", i), start.Add(time.Duration(i)*time.Second)))
	}
	return out
}

func TestOpen_FreshDirectory(t *testing.T) {
	s, err := Open(t.TempDir(), 100)
	require.NoError(t, err)
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Checkpoint().Offset)
}

func TestAppendAndReadRecent(t *testing.T) {
	s, err := Open(t.TempDir(), 100)
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err = s.Append(records(5, base), models.Checkpoint{Offset: 500})
	require.NoError(t, err)

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, int64(500), s.Checkpoint().Offset)

	t.Run("newest first", func(t *testing.T) {
		got := s.ReadRecent(3)
		require.Len(t, got, 3)
		assert.Equal(t, "rec-4", got[0].ID)
		assert.Equal(t, "rec-3", got[1].ID)
		assert.Equal(t, "rec-2", got[2].ID)
	})

	t.Run("limit zero returns all", func(t *testing.T) {
		assert.Len(t, s.ReadRecent(0), 5)
	})

	t.Run("negative limit returns all", func(t *testing.T) {
		assert.Len(t, s.ReadRecent(-1), 5)
	})

	t.Run("limit above size returns all", func(t *testing.T) {
		assert.Len(t, s.ReadRecent(99), 5)
	})
}

func TestAppend_EvictsOldest(t *testing.T) {
	s, err := Open(t.TempDir(), 10)
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	evicted, err := s.Append(records(10, base), models.Checkpoint{Offset: 100})
	require.NoError(t, err)
	assert.Zero(t, evicted)

	more := []models.AlertRecord{
		record("extra-0", base.Add(time.Hour)),
		record("extra-1", base.Add(time.Hour)),
		record("extra-2", base.Add(time.Hour)),
	}
	evicted, err = s.Append(more, models.Checkpoint{Offset: 130})
	require.NoError(t, err)
	assert.Equal(t, 3, evicted, "evicts exactly enough to return to the bound")
	assert.Equal(t, 10, s.Len())

	got := s.ReadRecent(0)
	assert.Equal(t, "extra-2", got[0].ID)
	// Oldest survivors are rec-3..rec-9.
	assert.Equal(t, "rec-3", got[len(got)-1].ID)
}

func TestAppend_SingleBatchOverCapacity(t *testing.T) {
	s, err := Open(t.TempDir(), 10)
	require.NoError(t, err)

	evicted, err := s.Append(records(25, time.Now()), models.Checkpoint{Offset: 2500})
	require.NoError(t, err)
	assert.Equal(t, 15, evicted)
	assert.Equal(t, 10, s.Len())
}

func TestPersistAndReload(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, 100)
	require.NoError(t, err)
	_, err = s.Append(records(4, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)), models.Checkpoint{Offset: 400})
	require.NoError(t, err)

	// Reopen from disk and verify the state round-trips.
	reopened, err := Open(dir, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, reopened.Len())
	assert.Equal(t, int64(400), reopened.Checkpoint().Offset)
	assert.Equal(t, "rec-3", reopened.ReadRecent(1)[0].ID)
	assert.Equal(t, "2", reopened.ReadRecent(1)[0].Severity())
}

func TestReload_TrimmedToCapacity(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, 100)
	require.NoError(t, err)
	_, err = s.Append(records(20, time.Now()), models.Checkpoint{Offset: 2000})
	require.NoError(t, err)

	// Reopen with a smaller bound: oldest records are dropped.
	reopened, err := Open(dir, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, reopened.Len())
	assert.Equal(t, "rec-19", reopened.ReadRecent(1)[0].ID)
}

func TestClear_KeepsCheckpoint(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, 100)
	require.NoError(t, err)
	_, err = s.Append(records(7, time.Now()), models.Checkpoint{Offset: 700})
	require.NoError(t, err)

	removed, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 7, removed)
	assert.Zero(t, s.Len())
	assert.Equal(t, int64(700), s.Checkpoint().Offset)

	// The cleared state is durable.
	reopened, err := Open(dir, 100)
	require.NoError(t, err)
	assert.Zero(t, reopened.Len())
	assert.Equal(t, int64(700), reopened.Checkpoint().Offset)
}

func TestOpen_CheckpointFileFallback(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, 100)
	require.NoError(t, err)
	_, err = s.Append(records(3, time.Now()), models.Checkpoint{Offset: 300})
	require.NoError(t, err)

	// An operator deleting just the history file must not cause a
	// re-ingest of the whole source log.
	require.NoError(t, os.Remove(filepath.Join(dir, historyFile)))

	reopened, err := Open(dir, 100)
	require.NoError(t, err)
	assert.Zero(t, reopened.Len())
	assert.Equal(t, int64(300), reopened.Checkpoint().Offset)
}

func TestOpen_CorruptHistoryFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, historyFile), []byte("{truncated"), 0o644))

	_, err := Open(dir, 100)
	assert.Error(t, err)
}

func TestPersist_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, 100)
	require.NoError(t, err)
	_, err = s.Append(records(2, time.Now()), models.Checkpoint{Offset: 200})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{historyFile, checkpointFile}, names)

	// History file embeds the checkpoint it corresponds to.
	data, err := os.ReadFile(filepath.Join(dir, historyFile))
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, int64(200), env.Checkpoint.Offset)
	assert.Len(t, env.Records, 2)
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	s, err := Open(t.TempDir(), 50)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = s.Append(records(10, time.Now()), models.Checkpoint{Offset: int64(n * 100)})
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = s.ReadRecent(10)
				_ = s.Len()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Len(), 50)
}
