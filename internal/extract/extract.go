// Package extract pulls structured hints out of free-form scenario text:
// which roster characters appear, and where the scene takes place.
//
// Scenario text follows the conversational shape produced by the interactive
// session, e.g.
//
//	"Yukari, Aigis in Dorm Lounge: poker night goes wrong"
//
// Characters are capitalised words matched case-insensitively against the
// pattern roster; the location is the fragment between the first " in " and
// the following ":". Both extractors are total: text that does not follow
// the shape yields empty results, never errors.
package extract

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// wordPattern matches candidate character mentions: a single capitalised word.
var wordPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// maxSuggestionDistance bounds how far a misspelling may drift from a roster
// name and still produce a hint.
const maxSuggestionDistance = 2

// Characters returns the canonical (upper-case) names of roster characters
// mentioned in text, in first-appearance order without duplicates.
func Characters(text string, roster []string) []string {
	if len(roster) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(roster))
	for _, name := range roster {
		known[strings.ToUpper(name)] = struct{}{}
	}

	var names []string
	seen := make(map[string]struct{})
	for _, word := range wordPattern.FindAllString(text, -1) {
		canonical := strings.ToUpper(word)
		if _, ok := known[canonical]; !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		names = append(names, canonical)
	}
	return names
}

// Location returns the scene location from text: the fragment between the
// first " in " and the next ":". Text without that shape yields "".
func Location(text string) string {
	_, after, ok := strings.Cut(text, " in ")
	if !ok {
		return ""
	}
	loc, _, ok := strings.Cut(after, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(loc)
}

// Suggestion pairs an unrecognised capitalised word with its closest roster
// name.
type Suggestion struct {
	// Word is the capitalised word as it appeared in the text.
	Word string

	// Candidate is the canonical roster name closest to Word.
	Candidate string

	// Distance is the Levenshtein distance between the two, at most
	// maxSuggestionDistance.
	Distance int
}

// Suggestions scans text for capitalised words that are not roster names but
// sit within a small edit distance of one, which almost always means a typo'd
// character mention. Short words are held to a proportionally tighter bound
// so common words ("The", "And") do not produce noise.
func Suggestions(text string, roster []string) []Suggestion {
	if len(roster) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(roster))
	for _, name := range roster {
		known[strings.ToUpper(name)] = struct{}{}
	}

	var out []Suggestion
	seen := make(map[string]struct{})
	for _, word := range wordPattern.FindAllString(text, -1) {
		canonical := strings.ToUpper(word)
		if _, ok := known[canonical]; ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}

		best, bestDist := "", maxSuggestionDistance+1
		for _, name := range roster {
			upper := strings.ToUpper(name)
			if d := matchr.Levenshtein(canonical, upper); d < bestDist {
				best, bestDist = upper, d
			}
		}
		if bestDist > maxSuggestionDistance || bestDist*2 >= len(canonical) {
			continue
		}
		out = append(out, Suggestion{Word: word, Candidate: best, Distance: bestDist})
	}
	return out
}
