// Package prompt renders the generation and refinement requests sent to the
// text-generation backend. The scenario prompt restates the user's input,
// surfaces weighted character traits and retrieved script context, and closes
// with a worked example plus output-format instructions ending in [Marker].
package prompt

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Marker is the terminal sentinel the model is instructed to emit after the
// scene. Normalization truncates raw completions at its first occurrence.
const Marker = "END_SCENE"

// DefaultSeries is the franchise label used when none is configured.
const DefaultSeries = "Persona 3"

// contextTail bounds how many retrieved script lines are quoted in the
// story-context section.
const contextTail = 3

// inspirationTags bounds how many trait tags each character's inspiration
// line may reference.
const inspirationTags = 2

// noContextFallback is rendered when no script lines were retrieved for the
// scenario, so the model is told explicitly rather than shown an empty block.
const noContextFallback = "(No direct context found)"

// connectives are the phrasings an inspiration line picks between at random.
var connectives = []string{"concepts like", "things such as"}

// Profile pairs a character name with the trait tags selected for this
// request.
type Profile struct {
	Name string
	Tags []string
}

// Config configures a Composer.
type Config struct {
	// Series is the franchise label woven into the system message and the
	// prompt's tag line. Defaults to [DefaultSeries].
	Series string

	// Vibes are the general tone tags surfaced under "Character vibes".
	Vibes []string
}

// Composer renders prompts for scene generation and refinement.
//
// Rendering is a pure function of its inputs except for two per-call random
// draws: the worked example embedded in the scenario prompt and the
// connective of each inspiration line. Repeated calls with identical inputs
// therefore produce differing prompt strings; downstream caching keys on the
// rendered prompt, so this is the mechanism that keeps repeated scenarios
// from collapsing onto a single cached scene.
//
// A Composer is not safe for concurrent use: it owns a seeded random source.
type Composer struct {
	series string
	vibes  string
	rng    *rand.Rand
}

// NewComposer returns a Composer for the given configuration. A nil rng is
// replaced with a freshly seeded source.
func NewComposer(cfg Config, rng *rand.Rand) *Composer {
	series := cfg.Series
	if series == "" {
		series = DefaultSeries
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Composer{
		series: series,
		vibes:  strings.Join(cfg.Vibes, ", "),
		rng:    rng,
	}
}

// System returns the system message that frames every generation request.
func (c *Composer) System() string {
	return fmt.Sprintf("You are an expert parody writer creating funny scenes with Characters from %s.", c.series)
}

// Scenario renders the full generation prompt for a scenario. contextLines
// are retrieved script lines, of which only the last [contextTail] are
// quoted; profiles carry the per-character trait tags already selected for
// this request.
func (c *Composer) Scenario(scenario string, contextLines []string, profiles []Profile) string {
	sections := []string{
		fmt.Sprintf("Create a highly detailed and elaborate parody scene based on this scenario: %s", scenario),
		c.styleSection(profiles),
		extendedLinesBlock,
		techniquesBlock,
		escalationLine,
		conflictBlock,
		fmt.Sprintf("Tags: Comedy, Adventure, Parody, Satire, Surreal Humour, %s", c.series),
		fmt.Sprintf("Character Backgrounds:\n%s", backgroundLines(profiles)),
		fmt.Sprintf("Story Context:\n%s", contextSection(contextLines)),
		guidelinesBlock,
		flowBlock,
		fmt.Sprintf("Example Scene Structure:\n%s", workedExamples[c.rng.IntN(len(workedExamples))]),
		fmt.Sprintf("Format output as:\n[CHARACTER]: [Dialogue]\n%s", Marker),
	}
	return strings.Join(sections, "\n\n")
}

// Refinement renders the system and user messages for a revision request.
// The previous scene and the refinement notes ride in the system message;
// the user message restates the original scenario unchanged.
func (c *Composer) Refinement(scenario, previousScene, notes string) (system, user string) {
	var sb strings.Builder
	sb.WriteString(c.System())
	sb.WriteString("\nHere is the previous scene:\n\n")
	sb.WriteString(previousScene)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Please refine this scene based on these notes: %s\n", notes)
	sb.WriteString("Keep the same characters and basic scenario but adjust according to the refinement notes.")
	return sb.String(), scenario
}

// ─────────────────────────────────────────────────────────────────────────────
// Section rendering
// ─────────────────────────────────────────────────────────────────────────────

// styleSection renders the tone hints: the general vibes line, one
// inspiration line per character that has tags, and the fixed tone and humor
// directives. Characters without tags contribute no inspiration line.
func (c *Composer) styleSection(profiles []Profile) string {
	lines := []string{
		"Style Suggestions:",
		fmt.Sprintf("Character vibes: %s", c.vibes),
	}
	for _, p := range profiles {
		if len(p.Tags) == 0 {
			continue
		}
		tags := p.Tags
		if len(tags) > inspirationTags {
			tags = tags[:inspirationTags]
		}
		connective := connectives[c.rng.IntN(len(connectives))]
		lines = append(lines, fmt.Sprintf("- %s: Might reference %s %s", p.Name, connective, strings.Join(tags, ", ")))
	}
	lines = append(lines,
		"Tone: Satirical, absurdist, with dark or dry humor",
		"Humor Style: South Park-style - irreverent, exaggerated, and often politically incorrect",
	)
	return strings.Join(lines, "\n")
}

// backgroundLines renders one "NAME: tag, tag" line per profile.
func backgroundLines(profiles []Profile) string {
	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		lines = append(lines, fmt.Sprintf("%s: %s", p.Name, strings.Join(p.Tags, ", ")))
	}
	return strings.Join(lines, "\n")
}

// contextSection quotes the last [contextTail] retrieved lines, or the
// explicit fallback when retrieval found nothing.
func contextSection(lines []string) string {
	if len(lines) == 0 {
		return noContextFallback
	}
	if len(lines) > contextTail {
		lines = lines[len(lines)-contextTail:]
	}
	return strings.Join(lines, "\n")
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixed guidance blocks
// ─────────────────────────────────────────────────────────────────────────────

const extendedLinesBlock = `Instructions for Extended Lines:
- Dialogue Lines: Each dialogue line should be comprehensive, including detailed expressions, emotions, and actions. Avoid brevity; instead, focus on fleshing out character personalities through their speech.
- Scene Descriptions: Elaborate on the setting and character movements. Use vivid imagery to paint a clear picture of the environment and actions.
- Character Actions: Incorporate detailed actions and reactions that reflect the characters' emotions and intentions.`

const techniquesBlock = `Comedic Techniques:
- Exaggeration, rule of three, misdirection
- Ironic contrasts, incongruity
- Unexpected juxtaposition, deadpan delivery
- Sarcasm and verbal irony, callbacks
- Physical/slapstick humor
- Pun and wordplay
- Over/understatement
- Meta-humor, parody and allusion
- Double entendre, comedic delay
- Absurd logic`

const escalationLine = `Each scene should escalate tension and conclude with a comedic reversal or punchline. Each line should be detailed, but not overly verbose.`

const conflictBlock = `Comedic Conflict Ideas:
- Each character has an exaggerated motivation or secret that drives them to behave absurdly.
- Unexpected obstacles or bizarre coincidences heighten comedic tension.
- Use comedic pacing—set up, escalate, and deliver a punchline—at least once per scene.`

const guidelinesBlock = `Guidelines:
1. Incorporate character quirks naturally
2. Use physical and situational comedy when appropriate
3. Maintain game-accurate personalities with parody freedoms
4. Use dark humor if it fits while keeping overall comedic focus
5. Build comedic tension: setup → escalating absurdity → punchline
6. Reference real-world or game elements for meta-humor`

const flowBlock = `Scene Flow:
1. Setup: Introduce location, characters, minor conflict
2. Escalation: Characters make increasingly absurd decisions
3. Climax: Tension peaks with chaos or comedic reveal
4. Resolution: Surprising twist or comedic payoff`
