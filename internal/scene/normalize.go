package scene

import (
	"strings"

	"github.com/skitlabs/lampoon/internal/prompt"
)

// sentenceMarks are the characters that may legitimately end a scene.
const sentenceMarks = ".!?"

// Normalize trims a raw completion to well-formed scene text.
//
// The text is cut at the first occurrence of [prompt.Marker] and
// whitespace-trimmed; models often echo the sentinel and keep rambling, and
// everything past it is noise. If nothing remains, the empty string is
// returned. Otherwise the text is truncated immediately after its last
// sentence-ending punctuation mark. When the text contains no sentence mark
// at all, trailing lines are dropped until the final line ends in one or no
// lines remain.
//
// Normalize is idempotent: applying it to its own output returns the same
// string.
func Normalize(raw string) string {
	text, _, _ := strings.Cut(raw, prompt.Marker)
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	if i := strings.LastIndexAny(text, sentenceMarks); i >= 0 {
		return text[:i+1]
	}

	lines := strings.Split(text, "\n")
	for len(lines) > 0 {
		last := strings.TrimSpace(lines[len(lines)-1])
		if last != "" && strings.ContainsRune(sentenceMarks, rune(last[len(last)-1])) {
			break
		}
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
