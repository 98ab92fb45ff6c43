// Package pattern loads and serves the parody pattern document: per-character
// style tags plus a general pool that seasons every prompt.
//
// The document is JSON with two top-level keys:
//
//	{
//	  "GENERAL": [{"tags": ["absurdist", "deadpan"]}],
//	  "CHARACTER_SPECIFICS": {
//	    "YUKARI": [{"patterns": ["..."], "tags": ["archery", "sarcasm"]}]
//	  }
//	}
//
// Decoding is strict: unknown top-level or entry keys fail the load so that a
// typo in a hand-edited document is caught at startup instead of silently
// producing flat prompts.
package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalid is wrapped by every schema validation failure, so callers can
// distinguish a malformed document from an I/O problem with errors.Is.
var ErrInvalid = errors.New("pattern: invalid document")

// characterKeyPattern is the allowed shape for CHARACTER_SPECIFICS keys:
// a single upper-case token, matching the canonical roster form.
var characterKeyPattern = regexp.MustCompile(`^[A-Z]+$`)

// Entry is one style pattern for a character or for the general pool.
type Entry struct {
	// Patterns holds example phrasings associated with the tags. Optional;
	// prompt composition currently consumes only tags.
	Patterns []string `json:"patterns,omitempty"`

	// Tags are the style keywords fed into tag weighting. At least one is
	// required per entry.
	Tags []string `json:"tags"`
}

// document is the on-disk JSON shape.
type document struct {
	General            []Entry            `json:"GENERAL"`
	CharacterSpecifics map[string][]Entry `json:"CHARACTER_SPECIFICS"`
}

// Store holds a validated pattern document. It is immutable after load and
// therefore safe for concurrent readers.
type Store struct {
	general    []Entry
	characters map[string][]Entry
	roster     []string
}

// Load reads the pattern document at path.
//
// A missing file is a soft failure: the pipeline can run without patterns
// (prompts simply carry no style tags), so Load warns and returns an empty
// store. A present but malformed document is a hard failure wrapping
// [ErrInvalid].
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("pattern document not found, starting with an empty store",
				"path", path)
			return &Store{characters: map[string][]Entry{}}, nil
		}
		return nil, fmt.Errorf("pattern: open %s: %w", path, err)
	}
	defer f.Close()

	store, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("pattern: load %s: %w", path, err)
	}
	return store, nil
}

// LoadFromReader decodes and validates a pattern document from r.
func LoadFromReader(r io.Reader) (*Store, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}

	store := &Store{
		general:    doc.General,
		characters: make(map[string][]Entry, len(doc.CharacterSpecifics)),
		roster:     make([]string, 0, len(doc.CharacterSpecifics)),
	}
	for name, entries := range doc.CharacterSpecifics {
		store.characters[name] = entries
		store.roster = append(store.roster, name)
	}
	sort.Strings(store.roster)
	return store, nil
}

// validate checks the document against the schema. All violations are
// collected so a broken document reports every problem at once.
func (d *document) validate() error {
	var errs []error

	if len(d.General) == 0 {
		errs = append(errs, errors.New("GENERAL must contain at least one entry"))
	}
	for i, e := range d.General {
		if err := validateEntry(e); err != nil {
			errs = append(errs, fmt.Errorf("GENERAL[%d]: %w", i, err))
		}
	}

	for name, entries := range d.CharacterSpecifics {
		if !characterKeyPattern.MatchString(name) {
			errs = append(errs, fmt.Errorf("character key %q must be a single upper-case token", name))
		}
		if len(entries) == 0 {
			errs = append(errs, fmt.Errorf("character %q has no entries", name))
		}
		for i, e := range entries {
			if err := validateEntry(e); err != nil {
				errs = append(errs, fmt.Errorf("character %q entry %d: %w", name, i, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func validateEntry(e Entry) error {
	if len(e.Tags) == 0 {
		return errors.New("entry must carry at least one tag")
	}
	for _, tag := range e.Tags {
		if strings.TrimSpace(tag) == "" {
			return errors.New("tags must not be blank")
		}
	}
	return nil
}

// Roster returns the canonical character names in sorted order.
func (s *Store) Roster() []string {
	out := make([]string, len(s.roster))
	copy(out, s.roster)
	return out
}

// Has reports whether name (case-insensitive) is a known character.
func (s *Store) Has(name string) bool {
	_, ok := s.characters[strings.ToUpper(name)]
	return ok
}

// Entries returns the pattern entries for name (case-insensitive).
// Unknown characters yield nil.
func (s *Store) Entries(name string) []Entry {
	return s.characters[strings.ToUpper(name)]
}

// GeneralVibes returns up to n tags from the first general entry. These are
// the broad comedic vibes prepended to every scenario prompt.
func (s *Store) GeneralVibes(n int) []string {
	if len(s.general) == 0 || n <= 0 {
		return nil
	}
	tags := s.general[0].Tags
	if n > len(tags) {
		n = len(tags)
	}
	out := make([]string, n)
	copy(out, tags[:n])
	return out
}

// Empty reports whether the store holds no patterns at all, which happens
// when the document file was absent at load time.
func (s *Store) Empty() bool {
	return len(s.general) == 0 && len(s.characters) == 0
}
