// Package archive persists generated scenes as an append-only local text
// file, one divider-separated entry per scene. The archive is a flat file
// rather than a database because scenes are write-only from the program's
// point of view: nothing reads them back except the user.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// dividerWidth is the width of the "=" rule separating archive entries.
const dividerWidth = 50

// Store appends scene text to a local archive file.
// Thread-safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store that writes to the given path. The file and its
// parent directory are created on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the archive file location.
func (s *Store) Path() string { return s.path }

// Append writes one scene to the archive, separated from earlier entries by
// a blank line and a divider rule.
func (s *Store) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	entry := "\n\n" + strings.Repeat("=", dividerWidth) + "\n" + text
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("archive: write: %w", err)
	}
	return nil
}

// Check probes the archive destination by opening it in append mode, creating
// the parent directory (and the file, as the first append would) on the way.
// It gives a readiness endpoint a real signal without writing an entry.
func (s *Store) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	return f.Close()
}

// open prepares the destination for appending. Callers hold s.mu.
func (s *Store) open() (*os.File, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("archive: create directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("archive: open file: %w", err)
	}
	return f, nil
}
