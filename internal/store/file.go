// Package store persists the reference table.
//
// FileStore keeps a single JSON snapshot on disk and is the default.
// PostgresStore keeps the snapshot in PostgreSQL when a database is
// configured.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/ShelfLife/internal/core"
)

// snapshotVersion is written to every file; Load rejects other versions.
const snapshotVersion = 1

type snapshot struct {
	Version    int                 `json:"version"`
	ID         string              `json:"id"`
	Source     string              `json:"source"`
	ImportedAt time.Time           `json:"imported_at"`
	Rows       []core.ReferenceRow `json:"rows"`
}

// FileStore stores the table as one JSON file.
type FileStore struct {
	path string
}

var _ core.Store = (*FileStore)(nil)

// NewFileStore returns a store writing to path. The parent directory is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot location.
func (s *FileStore) Path() string { return s.path }

// Save writes the snapshot to a temporary file in the same directory and
// renames it over the previous one, so a reader sees either the old table
// or the new one.
func (s *FileStore) Save(_ context.Context, table *core.ReferenceTable) error {
	if table == nil {
		return &core.StorageError{Op: "save", Err: errors.New("nil table")}
	}

	data, err := json.MarshalIndent(snapshot{
		Version:    snapshotVersion,
		ID:         table.ID,
		Source:     table.SourceName,
		ImportedAt: table.ImportedAt,
		Rows:       table.Sorted(),
	}, "", "  ")
	if err != nil {
		return &core.StorageError{Op: "save", Err: err}
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return &core.StorageError{Op: "save", Err: err}
	}
	return nil
}

// Load reads the snapshot. A missing file is (nil, nil); a file that
// cannot be decoded is a StorageError.
func (s *FileStore) Load(_ context.Context) (*core.ReferenceTable, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.StorageError{Op: "load", Err: err}
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &core.StorageError{Op: "load", Err: fmt.Errorf("decode %s: %w", s.path, err)}
	}
	if snap.Version != snapshotVersion {
		return nil, &core.StorageError{Op: "load", Err: fmt.Errorf("unsupported snapshot version %d", snap.Version)}
	}

	return tableFromRows(snap.ID, snap.Source, snap.ImportedAt, snap.Rows)
}

// Clear removes the snapshot. Removing a missing file is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &core.StorageError{Op: "clear", Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// tableFromRows rebuilds a table from stored rows, rejecting anything the
// importer could not have produced.
func tableFromRows(id, source string, importedAt time.Time, rows []core.ReferenceRow) (*core.ReferenceTable, error) {
	table := core.NewReferenceTable(id, source, importedAt)
	for _, r := range rows {
		key := core.NormalizeCode(r.MaterialCode)
		if key == "" || r.MaxShelfLifeDays < r.MinShelfLifeDays {
			return nil, &core.StorageError{Op: "load", Err: fmt.Errorf("invalid stored row %q", r.MaterialCode)}
		}
		r.MaterialCode = key
		table.Rows[key] = r
	}
	if table.Len() == 0 {
		return nil, nil
	}
	return table, nil
}
