package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Index persists artifact metadata across restarts. Implementations snapshot
// the full record set; the store keeps the authoritative copy in memory.
type Index interface {
	Load() ([]Record, error)
	Save(records []Record) error
}

// FileIndex stores the records as one JSON document next to the artifacts.
type FileIndex struct {
	path string
}

// NewFileIndex creates the index's parent directory if missing.
func NewFileIndex(path string) (*FileIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &FileIndex{path: path}, nil
}

// Load reads the snapshot. A missing file is an empty index, not an error.
func (x *FileIndex) Load() ([]Record, error) {
	data, err := os.ReadFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return records, nil
}

// Save writes the snapshot atomically via a temp file rename.
func (x *FileIndex) Save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	tmp := x.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, x.path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}
