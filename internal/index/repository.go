package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Repository round-trips the whole document to a single JSON file.
// All mutations are full read-modify-write cycles; there is no locking.
// The version stamp in Metadata turns a lost update into an explicit
// ErrConflict instead of a silent overwrite. The stamp travels with the
// Document itself, so a Repository holds no mutable state and is safe
// to share across goroutines.
type Repository struct {
	path string
}

// NewRepository creates a repository for the index file at path.
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// Path returns the index file path.
func (r *Repository) Path() string {
	return r.path
}

// Init writes an empty document. Fails with ErrExists if an index file is
// already in place.
func (r *Repository) Init(now time.Time) (*Document, error) {
	if _, err := os.Stat(r.path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, r.path)
	}

	doc := NewDocument()
	doc.Metadata.LastUpdated = now.UTC()
	doc.Metadata.Version = 1

	if err := r.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads and parses the document. A missing file is ErrNotFound; a
// file that exists but cannot be parsed is a MalformedError. Both abort
// without side effects.
func (r *Repository) Load() (*Document, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.path)
		}
		return nil, fmt.Errorf("index: reading %s: %w", r.path, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &MalformedError{Path: r.path, Err: err}
	}

	if doc.Index.ByTopic == nil {
		doc.Index.ByTopic = make(map[string][]Ref)
	}
	if doc.Index.BySemanticHash == nil {
		doc.Index.BySemanticHash = make(map[string]Ref)
	}

	return &doc, nil
}

// Save persists the document, bumping its version stamp. If the file's
// current stamp differs from the stamp the document was loaded with, the
// file changed underneath us and Save fails with ErrConflict, leaving it
// intact. A document with stamp zero was never loaded and skips the check.
func (r *Repository) Save(doc *Document) error {
	current, err := r.diskVersion()
	if err != nil {
		return err
	}
	if current != 0 && doc.Metadata.Version != 0 && current != doc.Metadata.Version {
		return fmt.Errorf("%w: loaded v%d, disk has v%d", ErrConflict, doc.Metadata.Version, current)
	}

	doc.Metadata.Version = current + 1
	return r.write(doc)
}

// diskVersion reads only the version stamp from the current file.
// A missing file reports version 0.
func (r *Repository) diskVersion() (int64, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("index: reading %s: %w", r.path, err)
	}

	var probe struct {
		Metadata struct {
			Version int64 `json:"version"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return 0, &MalformedError{Path: r.path, Err: err}
	}
	return probe.Metadata.Version, nil
}

func (r *Repository) write(doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encoding document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("index: creating directory for %s: %w", r.path, err)
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("index: writing %s: %w", r.path, err)
	}
	return nil
}
