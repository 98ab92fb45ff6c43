package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_TrimsAndDropsBlanks(t *testing.T) {
	t.Parallel()

	c := New([]string{
		"  YUKARI: Hello.  ",
		"",
		"   ",
		"AIGIS: Greetings.",
	})
	if c.Len() != 2 {
		t.Errorf("expected 2 usable lines, got %d", c.Len())
	}
}

func TestLoad_ReplicatesSupplement(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "script.txt")
	supplement := filepath.Join(dir, "parody.txt")

	if err := os.WriteFile(script, []byte("YUKARI: line one\nAIGIS: line two\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(supplement, []byte("KEN: supplement line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(LoadConfig{ScriptPath: script, SupplementPath: supplement, EpisodeWeight: 3})
	// 2 primary + 1 supplement × 3.
	if c.Len() != 5 {
		t.Errorf("expected 5 lines, got %d", c.Len())
	}
}

func TestLoad_MissingFilesAreSoft(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := Load(LoadConfig{
		ScriptPath:     filepath.Join(dir, "absent.txt"),
		SupplementPath: filepath.Join(dir, "also-absent.txt"),
	})
	if c.Len() != 0 {
		t.Errorf("expected empty corpus, got %d lines", c.Len())
	}

	// Retrieval over an empty corpus is a no-op, not a failure.
	got := c.Relevant(Query{Characters: []string{"YUKARI"}})
	if len(got) != 0 {
		t.Errorf("expected no context lines, got %v", got)
	}
}

func TestLoad_PrimaryOnlySupplementUnset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "script.txt")
	if err := os.WriteFile(script, []byte("YUKARI: solo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(LoadConfig{ScriptPath: script})
	if c.Len() != 1 {
		t.Errorf("expected 1 line, got %d", c.Len())
	}
}

func TestLoad_ZeroWeightSkipsSupplement(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "script.txt")
	supplement := filepath.Join(dir, "parody.txt")

	if err := os.WriteFile(script, []byte("YUKARI: primary\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(supplement, []byte("KEN: never seen\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(LoadConfig{ScriptPath: script, SupplementPath: supplement, EpisodeWeight: 0})
	if c.Len() != 1 {
		t.Errorf("expected the supplement to contribute nothing, got %d lines", c.Len())
	}
}
