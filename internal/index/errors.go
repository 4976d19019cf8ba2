package index

import (
	"errors"
	"fmt"
)

// Sentinel errors for callers to match with errors.Is.
var (
	// ErrNotFound indicates the index file does not exist on disk.
	ErrNotFound = errors.New("index: file not found")

	// ErrSessionNotFound indicates an append targeted an unknown session.
	ErrSessionNotFound = errors.New("index: session not found")

	// ErrSessionExists indicates a session with that ID already exists.
	ErrSessionExists = errors.New("index: session already exists")

	// ErrTopicNotFound indicates a topic lookup found no index entry.
	ErrTopicNotFound = errors.New("index: topic not found")

	// ErrEntryNotFound indicates an index reference points at a missing entry.
	ErrEntryNotFound = errors.New("index: entry not found")

	// ErrConflict indicates the document changed on disk since it was
	// loaded; the save was aborted with no partial write.
	ErrConflict = errors.New("index: document modified since load")

	// ErrExists indicates Init found an index file already in place.
	ErrExists = errors.New("index: file already exists")
)

// MalformedError indicates the serialized document could not be parsed.
// It is distinct from ErrNotFound so callers can tell a missing index
// apart from a corrupt one.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("index: malformed document %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
