package extract

import (
	"testing"
)

var roster = []string{"AIGIS", "AKIHIKO", "KEN", "MITSURU", "YUKARI"}

func TestCharacters_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	got := Characters("Yukari dares Aigis in Dorm Lounge: poker night", roster)
	if len(got) != 2 {
		t.Fatalf("expected 2 characters, got %v", got)
	}
	if got[0] != "YUKARI" || got[1] != "AIGIS" {
		t.Errorf("expected [YUKARI AIGIS] in appearance order, got %v", got)
	}
}

func TestCharacters_Deduplicates(t *testing.T) {
	t.Parallel()

	got := Characters("Yukari argues with Yukari about Yukari", roster)
	if len(got) != 1 || got[0] != "YUKARI" {
		t.Errorf("expected a single YUKARI, got %v", got)
	}
}

func TestCharacters_GrammarBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want int
	}{
		// The grammar is one capital followed by lower-case letters, so
		// shouting and lower-case mentions are not character references.
		{"all caps ignored", "YUKARI storms off", 0},
		{"lower case ignored", "yukari storms off", 0},
		{"mixed", "Mitsuru scolds JUNPEI and ken", 1},
		{"unknown names ignored", "Bob and Alice in Dorm: chaos", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Characters(tc.text, roster); len(got) != tc.want {
				t.Errorf("expected %d matches, got %v", tc.want, got)
			}
		})
	}
}

func TestCharacters_EmptyRoster(t *testing.T) {
	t.Parallel()

	if got := Characters("Yukari in Dorm: chaos", nil); got != nil {
		t.Errorf("expected nil for empty roster, got %v", got)
	}
}

func TestLocation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"simple", "Yukari in Dorm: exam week", "Dorm"},
		{"multi word", "Mitsuru, Ken in Paulownia Mall: shopping in Tokyo", "Paulownia Mall"},
		{"no in", "Yukari: exam week", ""},
		{"no colon", "Yukari in Dorm exam week", ""},
		{"padded", "Aigis in   Iwatodai Station  : lost again", "Iwatodai Station"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Location(tc.text); got != tc.want {
				t.Errorf("Location(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestSuggestions_CatchesTypos(t *testing.T) {
	t.Parallel()

	got := Suggestions("Yukan and Akihko in Dorm: breakfast duel", roster)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", got)
	}
	if got[0].Word != "Yukan" || got[0].Candidate != "YUKARI" {
		t.Errorf("unexpected first suggestion: %+v", got[0])
	}
	if got[1].Word != "Akihko" || got[1].Candidate != "AKIHIKO" {
		t.Errorf("unexpected second suggestion: %+v", got[1])
	}
	for _, s := range got {
		if s.Distance > maxSuggestionDistance {
			t.Errorf("suggestion %q exceeded distance bound: %d", s.Word, s.Distance)
		}
	}
}

func TestSuggestions_NoNoiseFromCommonWords(t *testing.T) {
	t.Parallel()

	// "Tea" is distance 2 from KEN, inside the absolute bound; the
	// proportional bound for three-letter words rejects it.
	cases := []string{
		"The Dorm was quiet that night",
		"Tea first, then the inspection",
	}
	for _, text := range cases {
		if got := Suggestions(text, roster); len(got) != 0 {
			t.Errorf("Suggestions(%q) = %v, want none", text, got)
		}
	}
}

func TestSuggestions_SkipsRosterMatches(t *testing.T) {
	t.Parallel()

	got := Suggestions("Yukari in Dorm: fine as written", roster)
	for _, s := range got {
		if s.Word == "Yukari" {
			t.Errorf("roster match must not produce a suggestion: %+v", s)
		}
	}
}

func TestSuggestions_FarWordsIgnored(t *testing.T) {
	t.Parallel()

	if got := Suggestions("Zanzibar in Dorm: vacation", roster); len(got) != 0 {
		t.Errorf("expected no suggestion for distant word, got %v", got)
	}
}
