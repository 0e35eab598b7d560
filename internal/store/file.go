package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RecordStore persists the full record set between runs. Both reads and
// writes are wholesale: Load returns everything, Save replaces everything.
type RecordStore interface {
	Load(ctx context.Context) ([]JobRecord, error)
	Save(ctx context.Context, records []JobRecord) error
}

// FileStore keeps the record set as a JSON array on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted record set. A missing file is an empty set, not
// an error; anything else (unreadable file, invalid JSON) is fatal to the
// run because dedup cannot work without prior state.
func (s *FileStore) Load(_ context.Context) ([]JobRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	var records []JobRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", s.path, err)
	}
	return records, nil
}

// Save overwrites the record set. The write goes through a temp file and
// rename so a crash mid-write cannot leave a truncated state file.
func (s *FileStore) Save(_ context.Context, records []JobRecord) error {
	if records == nil {
		records = []JobRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".records-*.json")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}
