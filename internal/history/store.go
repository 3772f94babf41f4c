// Package history persists the outcome of prior sync runs, keyed by drama
// ID. The store is a single JSON file, fully rewritten on every upsert via a
// temp-file-and-rename so a crash leaves either the old or the new content,
// never a torn write. A corrupt or unreadable file degrades to an empty
// store: the engine keeps working and simply treats every drama as new.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	ioutils "github.com/saputra/dramabox-dl/internal/io"
)

// Status classifies the last recorded outcome for a drama.
type Status string

const (
	// StatusCompleted means every episode succeeded or was already present.
	StatusCompleted Status = "completed"

	// StatusPartial means at least one episode succeeded but not all.
	StatusPartial Status = "partial"
)

// Record is the persisted state for one drama. One record per ID; each save
// replaces the previous record wholesale.
type Record struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TotalEpisodes int       `json:"total_episodes"`
	Status        Status    `json:"status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type storeFile struct {
	Records map[string]Record `json:"records"`
}

// Store is a durable map from drama ID to Record. It assumes a single
// writer; concurrent engine instances sharing one file are not supported.
type Store struct {
	path string

	mu      sync.Mutex
	records map[string]Record
}

// Open loads the store at path. A missing, corrupt or unreadable file is
// not an error: the store starts empty.
func Open(path string) *Store {
	s := &Store{
		path:    path,
		records: make(map[string]Record),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil || file.Records == nil {
		return s
	}

	s.records = file.Records
	return s
}

// Get returns the record for a drama ID, if one exists.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	return rec, ok
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Upsert replaces the record for rec.ID and persists the whole store
// atomically. UpdatedAt is stamped here.
func (s *Store) Upsert(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.UpdatedAt = time.Now()
	s.records[rec.ID] = rec

	data, err := json.MarshalIndent(storeFile{Records: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := ioutils.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
