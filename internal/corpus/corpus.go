// Package corpus loads the reference script corpus and retrieves
// character-relevant dialogue lines for prompt grounding.
//
// The corpus is plain text, one line per row, in screenplay form:
//
//	YUKARI: Did you seriously bring the robot to a card game?
//	AIGIS: Probability of victory: 94 percent.
//
// Two files feed it: the primary script dump and an optional hand-written
// parody supplement. The supplement is replicated EpisodeWeight times so that
// its lines dominate retrieval despite the primary corpus being much larger.
package corpus

import (
	"log/slog"
	"os"
	"strings"
)

// Corpus holds the merged, cleaned script lines. It is immutable after load
// and therefore safe for concurrent readers.
type Corpus struct {
	lines []string
}

// LoadConfig names the corpus inputs.
type LoadConfig struct {
	// ScriptPath is the primary screenplay file.
	ScriptPath string

	// SupplementPath is the optional parody supplement.
	SupplementPath string

	// EpisodeWeight is how many times the supplement block is replicated.
	// Zero skips the supplement entirely; the config layer defaults omitted
	// values to 10 before calling Load.
	EpisodeWeight int
}

// Load reads and merges the corpus files. Missing files are soft failures:
// retrieval simply has less (or nothing) to offer, so Load warns and carries
// on rather than refusing to start.
func Load(cfg LoadConfig) *Corpus {
	if cfg.EpisodeWeight < 0 {
		cfg.EpisodeWeight = 0
	}

	primary := readLines(cfg.ScriptPath, "script")
	supplement := readLines(cfg.SupplementPath, "supplement")

	lines := make([]string, 0, len(primary)+len(supplement)*cfg.EpisodeWeight)
	lines = append(lines, primary...)
	for i := 0; i < cfg.EpisodeWeight; i++ {
		lines = append(lines, supplement...)
	}
	return New(lines)
}

// New builds a corpus from raw lines, trimming whitespace and dropping blanks.
func New(raw []string) *Corpus {
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return &Corpus{lines: lines}
}

// Len returns the number of usable lines.
func (c *Corpus) Len() int {
	return len(c.lines)
}

// readLines loads path and splits it into raw lines. An unset path is simply
// skipped; an unreadable one is logged and skipped.
func readLines(path, kind string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("corpus file unavailable, continuing without it",
			"kind", kind,
			"path", path,
			"error", err)
		return nil
	}
	return strings.Split(string(data), "\n")
}
