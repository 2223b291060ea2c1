package storage

import (
	"encoding/json"
	"fmt"
)

// SnapshotStore persists domain state (account registries, clearing queue
// obligations, authorization records) as JSON-encoded blobs behind a
// Database. It does not interpret keys beyond what a caller supplies;
// callers own their own key scheme.
type SnapshotStore struct {
	db Database
}

// NewSnapshotStore wraps db (MemDB for tests, LevelDB for a persistent
// domain deployment).
func NewSnapshotStore(db Database) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SaveJSON marshals v and stores it under key.
func (s *SnapshotStore) SaveJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: marshal snapshot %q: %w", key, err)
	}
	return s.db.Put([]byte(key), raw)
}

// LoadJSON retrieves the blob under key and unmarshals it into v.
func (s *SnapshotStore) LoadJSON(key string, v any) error {
	raw, err := s.db.Get([]byte(key))
	if err != nil {
		return fmt.Errorf("storage: load snapshot %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("storage: unmarshal snapshot %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() {
	s.db.Close()
}
