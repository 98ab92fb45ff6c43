package corpus

import "strings"

// contextLimit caps how many lines a retrieval returns. Prompts stay small
// and the model is not drowned in canon.
const contextLimit = 5

// Query selects dialogue lines for a set of characters.
type Query struct {
	// Characters are canonical roster names whose dialogue lines qualify.
	Characters []string

	// Location, when set, narrows matches to lines mentioning it and switches
	// retrieval to the last matches in corpus order instead of the first.
	// Later lines in the corpus are the replicated supplement, so a located
	// query favours the hand-written parody material.
	Location string
}

// Relevant returns up to five dialogue lines matching q.
//
// Without a location the scan stops at the first five matches. With one, the
// whole corpus is scanned and the final five matches are returned.
func (c *Corpus) Relevant(q Query) []string {
	if len(q.Characters) == 0 {
		return nil
	}
	if q.Location == "" {
		return c.firstMatches(q.Characters)
	}
	return c.lastMatches(q.Characters, q.Location)
}

func (c *Corpus) firstMatches(characters []string) []string {
	var out []string
	for _, line := range c.lines {
		if len(out) >= contextLimit {
			break
		}
		if spokenBy(line, characters) {
			out = append(out, line)
		}
	}
	return out
}

func (c *Corpus) lastMatches(characters []string, location string) []string {
	lowerLoc := strings.ToLower(location)
	var matches []string
	for _, line := range c.lines {
		if spokenBy(line, characters) && strings.Contains(strings.ToLower(line), lowerLoc) {
			matches = append(matches, line)
		}
	}
	if len(matches) > contextLimit {
		matches = matches[len(matches)-contextLimit:]
	}
	return matches
}

// spokenBy reports whether line is a dialogue line of one of characters: the
// line must start with the character's name immediately followed by a colon,
// compared case-insensitively.
func spokenBy(line string, characters []string) bool {
	for _, ch := range characters {
		if len(line) > len(ch) && line[len(ch)] == ':' && strings.EqualFold(line[:len(ch)], ch) {
			return true
		}
	}
	return false
}
