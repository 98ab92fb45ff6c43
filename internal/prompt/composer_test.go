package prompt_test

import (
	"strings"
	"testing"

	"github.com/skitlabs/lampoon/internal/prompt"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func testComposer() *prompt.Composer {
	return prompt.NewComposer(prompt.Config{
		Series: "Persona 3",
		Vibes:  []string{"absurdist", "deadpan", "satire"},
	}, nil)
}

func testProfiles() []prompt.Profile {
	return []prompt.Profile{
		{Name: "YUKARI", Tags: []string{"archery", "sarcasm", "deadpan"}},
		{Name: "AKIHIKO", Tags: []string{"protein"}},
	}
}

// lineWithPrefix returns the first line of s starting with prefix, or "".
func lineWithPrefix(s, prefix string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

// ─────────────────────────────────────────────────────────────────────────────
// tests
// ─────────────────────────────────────────────────────────────────────────────

// TestScenario_AssemblesSectionsInOrder verifies that every section of the
// generation prompt is present and that they appear in the fixed order.
func TestScenario_AssemblesSectionsInOrder(t *testing.T) {
	c := testComposer()
	got := c.Scenario("YUKARI and AKIHIKO in Dorm: an argument over dinner", []string{"YUKARI: context line"}, testProfiles())

	anchors := []string{
		"Create a highly detailed and elaborate parody scene based on this scenario: YUKARI and AKIHIKO in Dorm: an argument over dinner",
		"Style Suggestions:",
		"Character vibes: absurdist, deadpan, satire",
		"Tone: Satirical, absurdist, with dark or dry humor",
		"Instructions for Extended Lines:",
		"Comedic Techniques:",
		"Comedic Conflict Ideas:",
		"Tags: Comedy, Adventure, Parody, Satire, Surreal Humour, Persona 3",
		"Character Backgrounds:",
		"Story Context:",
		"Guidelines:",
		"Scene Flow:",
		"Example Scene Structure:",
		"Format output as:",
	}

	prev := -1
	for _, anchor := range anchors {
		idx := strings.Index(got, anchor)
		if idx < 0 {
			t.Fatalf("prompt missing section %q:\n%s", anchor, got)
		}
		if idx <= prev {
			t.Errorf("section %q out of order (index %d, previous %d)", anchor, idx, prev)
		}
		prev = idx
	}
}

// TestScenario_InspirationLinesUseFirstTwoTags verifies that each character
// with tags gets one inspiration line referencing at most two of them.
func TestScenario_InspirationLinesUseFirstTwoTags(t *testing.T) {
	c := testComposer()
	got := c.Scenario("scenario", nil, testProfiles())

	yukari := lineWithPrefix(got, "- YUKARI: Might reference ")
	if yukari == "" {
		t.Fatalf("prompt missing YUKARI inspiration line:\n%s", got)
	}
	if !strings.HasSuffix(yukari, "archery, sarcasm") {
		t.Errorf("YUKARI inspiration should end with first two tags, got %q", yukari)
	}
	if strings.Contains(yukari, "deadpan") {
		t.Errorf("YUKARI inspiration should not include a third tag, got %q", yukari)
	}

	akihiko := lineWithPrefix(got, "- AKIHIKO: Might reference ")
	if akihiko == "" {
		t.Fatalf("prompt missing AKIHIKO inspiration line:\n%s", got)
	}
	if !strings.HasSuffix(akihiko, "protein") {
		t.Errorf("AKIHIKO inspiration should end with its single tag, got %q", akihiko)
	}
}

// TestScenario_TaglessCharacterGetsNoInspirationLine verifies that a profile
// with no tags still appears in the backgrounds block but contributes no
// inspiration line.
func TestScenario_TaglessCharacterGetsNoInspirationLine(t *testing.T) {
	c := testComposer()
	profiles := []prompt.Profile{{Name: "KEN"}}
	got := c.Scenario("scenario", nil, profiles)

	if strings.Contains(got, "- KEN:") {
		t.Errorf("tagless character should not get an inspiration line:\n%s", got)
	}
	if !strings.Contains(got, "\nKEN: ") {
		t.Errorf("tagless character should still be listed under Character Backgrounds:\n%s", got)
	}
}

// TestScenario_BackgroundsListAllTags verifies that the backgrounds block
// lists every selected tag, not just the inspiration subset.
func TestScenario_BackgroundsListAllTags(t *testing.T) {
	c := testComposer()
	got := c.Scenario("scenario", nil, testProfiles())

	if !strings.Contains(got, "YUKARI: archery, sarcasm, deadpan") {
		t.Errorf("backgrounds block missing full YUKARI tag list:\n%s", got)
	}
	if !strings.Contains(got, "AKIHIKO: protein") {
		t.Errorf("backgrounds block missing AKIHIKO tag list:\n%s", got)
	}
}

// TestScenario_ContextQuotesLastThreeLines verifies that only the trailing
// three retrieved lines are quoted in the story-context block.
func TestScenario_ContextQuotesLastThreeLines(t *testing.T) {
	c := testComposer()
	context := []string{
		"YUKARI: line one",
		"YUKARI: line two",
		"YUKARI: line three",
		"YUKARI: line four",
	}
	got := c.Scenario("scenario", context, nil)

	if strings.Contains(got, "line one") {
		t.Errorf("context block should drop all but the last three lines:\n%s", got)
	}
	for _, want := range []string{"line two", "line three", "line four"} {
		if !strings.Contains(got, want) {
			t.Errorf("context block missing %q:\n%s", want, got)
		}
	}
}

// TestScenario_NoContextFallback verifies the explicit fallback sentence when
// retrieval produced no lines.
func TestScenario_NoContextFallback(t *testing.T) {
	c := testComposer()
	got := c.Scenario("scenario", nil, nil)

	if !strings.Contains(got, "(No direct context found)") {
		t.Errorf("prompt missing no-context fallback:\n%s", got)
	}
}

// TestScenario_EndsWithSentinel verifies that the prompt closes with the
// output-format instructions and the terminal sentinel.
func TestScenario_EndsWithSentinel(t *testing.T) {
	c := testComposer()
	got := c.Scenario("scenario", nil, nil)

	if !strings.Contains(got, "Format output as:\n[CHARACTER]: [Dialogue]\n") {
		t.Errorf("prompt missing output-format instructions:\n%s", got)
	}
	if !strings.HasSuffix(got, prompt.Marker) {
		t.Errorf("prompt should end with %q, got tail %q", prompt.Marker, got[len(got)-40:])
	}
}

// TestScenario_WorkedExampleVariesAcrossCalls verifies that the embedded
// worked example is drawn per call, so identical scenario inputs produce
// differing prompt strings. Each prompt must still embed exactly one example
// from the pool.
func TestScenario_WorkedExampleVariesAcrossCalls(t *testing.T) {
	c := testComposer()

	openers := []string{
		"YUKARI: How did the lounge music change by itself",
		"AIGIS: [Monotone] Incoming call.",
	}

	distinct := make(map[string]bool)
	for i := 0; i < 64; i++ {
		p := c.Scenario("same scenario", nil, nil)
		distinct[p] = true

		found := 0
		for _, opener := range openers {
			if strings.Contains(p, opener) {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("prompt should embed exactly one worked example, found %d", found)
		}
	}

	if len(distinct) < 2 {
		t.Errorf("64 renders of the same scenario produced %d distinct prompts, want at least 2", len(distinct))
	}
}

// TestScenario_SeriesAppearsInTagLine verifies that a configured series label
// replaces the default in the tag line.
func TestScenario_SeriesAppearsInTagLine(t *testing.T) {
	c := prompt.NewComposer(prompt.Config{Series: "Persona 4 Golden"}, nil)
	got := c.Scenario("scenario", nil, nil)

	if !strings.Contains(got, "Tags: Comedy, Adventure, Parody, Satire, Surreal Humour, Persona 4 Golden") {
		t.Errorf("tag line missing configured series:\n%s", got)
	}
}

// TestSystem_DefaultsSeries verifies the default series label in the system
// message when none is configured.
func TestSystem_DefaultsSeries(t *testing.T) {
	c := prompt.NewComposer(prompt.Config{}, nil)

	want := "You are an expert parody writer creating funny scenes with Characters from Persona 3."
	if got := c.System(); got != want {
		t.Errorf("System() = %q, want %q", got, want)
	}
}

// TestRefinement_MessageShapes verifies that the previous scene and notes
// ride in the system message while the user message restates the scenario.
func TestRefinement_MessageShapes(t *testing.T) {
	c := testComposer()
	scenario := "YUKARI in Dorm: an argument"
	previous := "YUKARI: This scene already exists.\nEND"
	notes := "More AKIHIKO protein jokes"

	system, user := c.Refinement(scenario, previous, notes)

	if !strings.Contains(system, c.System()) {
		t.Errorf("system message missing writer framing:\n%s", system)
	}
	if !strings.Contains(system, previous) {
		t.Errorf("system message missing previous scene:\n%s", system)
	}
	if !strings.Contains(system, "Please refine this scene based on these notes: "+notes) {
		t.Errorf("system message missing refinement notes:\n%s", system)
	}
	if !strings.Contains(system, "Keep the same characters and basic scenario") {
		t.Errorf("system message missing closing instruction:\n%s", system)
	}
	if user != scenario {
		t.Errorf("user message = %q, want original scenario %q", user, scenario)
	}
}
