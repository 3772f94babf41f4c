package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "download_history.json")
}

func TestOpen_MissingFileIsEmptyStore(t *testing.T) {
	s := Open(tempStorePath(t))
	assert.Equal(t, 0, s.Len())
}

func TestOpen_CorruptFileIsEmptyStore(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := Open(path)

	assert.Equal(t, 0, s.Len())

	// The degraded store must still accept writes.
	require.NoError(t, s.Upsert(Record{ID: "1", Title: "T", TotalEpisodes: 3, Status: StatusCompleted}))
	assert.Equal(t, 1, s.Len())
}

func TestUpsert_PersistsAndReloads(t *testing.T) {
	path := tempStorePath(t)

	s := Open(path)
	require.NoError(t, s.Upsert(Record{ID: "42", Title: "Answer", TotalEpisodes: 3, Status: StatusCompleted}))

	reloaded := Open(path)
	rec, ok := reloaded.Get("42")
	require.True(t, ok)
	assert.Equal(t, "Answer", rec.Title)
	assert.Equal(t, 3, rec.TotalEpisodes)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestUpsert_ReplacesExistingRecord(t *testing.T) {
	s := Open(tempStorePath(t))

	require.NoError(t, s.Upsert(Record{ID: "42", Title: "Answer", TotalEpisodes: 3, Status: StatusPartial}))
	require.NoError(t, s.Upsert(Record{ID: "42", Title: "Answer", TotalEpisodes: 5, Status: StatusCompleted}))

	assert.Equal(t, 1, s.Len(), "upsert is idempotent per ID")
	rec, ok := s.Get("42")
	require.True(t, ok)
	assert.Equal(t, 5, rec.TotalEpisodes, "later write wins")
	assert.Equal(t, StatusCompleted, rec.Status)
}

func TestGet_Absent(t *testing.T) {
	s := Open(tempStorePath(t))

	_, ok := s.Get("nope")
	assert.False(t, ok)
}
