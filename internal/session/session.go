// Package session implements the line-oriented interactive surface around
// the scene loop: prompt for a scenario, show the generated scene, then
// refine, restart, or exit.
//
// The session reads whole lines and checks for cancellation between
// prompts; a read already blocking on stdin is only interrupted by EOF.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skitlabs/lampoon/internal/extract"
	"github.com/skitlabs/lampoon/internal/prompt"
	"github.com/skitlabs/lampoon/internal/scene"
)

// ruleWidth is the width of the horizontal rules framing a displayed scene.
const ruleWidth = 50

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
	sceneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
)

// Config holds the dependencies for a [Session].
type Config struct {
	// Loop drives scene generation and refinement. Must not be nil.
	Loop *scene.Loop

	// Series labels the welcome banner. Defaults to [prompt.DefaultSeries].
	Series string

	// Roster is the set of recognized character names. It is shown to the
	// user and feeds the near-miss hints.
	Roster []string

	// Input is the line source. Defaults to os.Stdin.
	Input io.Reader

	// Output receives all rendered text. Defaults to os.Stdout.
	Output io.Writer
}

// Session drives one interactive run. It owns no goroutines: Run blocks on
// stdin and returns when the user exits, input is exhausted, or the context
// is cancelled.
type Session struct {
	loop   *scene.Loop
	series string
	roster []string
	in     *bufio.Scanner
	out    io.Writer
}

// New creates a Session from cfg.
func New(cfg Config) (*Session, error) {
	if cfg.Loop == nil {
		return nil, errors.New("session: Loop must not be nil")
	}
	if cfg.Series == "" {
		cfg.Series = prompt.DefaultSeries
	}
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Session{
		loop:   cfg.Loop,
		series: cfg.Series,
		roster: cfg.Roster,
		in:     bufio.NewScanner(cfg.Input),
		out:    cfg.Output,
	}, nil
}

// Run drives the session until the user exits, input ends, or ctx is
// cancelled. End of input is a clean exit: a held scene is finalized, an
// empty loop abandoned, and nil returned.
func (s *Session) Run(ctx context.Context) error {
	s.printWelcome()

	for {
		scenario, err := s.promptScenario(ctx)
		if err != nil {
			return s.quit(err)
		}

		// Generation failures are absorbed into the result as fallback
		// text, so only cancellation surfaces here.
		if _, err := s.loop.Start(ctx, scenario); err != nil {
			return s.quit(err)
		}

		exit, err := s.menu(ctx)
		if err != nil {
			return s.quit(err)
		}
		if exit {
			return s.quit(nil)
		}
	}
}

// promptScenario collects setting, characters, and context, and assembles
// the scenario line. Missing setting or characters re-prompts.
func (s *Session) promptScenario(ctx context.Context) (string, error) {
	for {
		s.println("")
		s.println(titleStyle.Render("Scenario Details:"))

		s.println(hintStyle.Render("Setting: your choice (e.g. Dorm, Tartarus, School, Mall)"))
		setting, err := s.readLine(ctx, "Setting: ")
		if err != nil {
			return "", err
		}

		if len(s.roster) > 0 {
			s.println(hintStyle.Render("Available characters: " + strings.Join(s.roster, ", ")))
		}
		characters, err := s.readLine(ctx, "Characters (separated by commas): ")
		if err != nil {
			return "", err
		}

		s.println(hintStyle.Render("Brief context to ground the scene:"))
		contextText, err := s.readLine(ctx, "Context: ")
		if err != nil {
			return "", err
		}

		if setting == "" || characters == "" {
			s.println(warnStyle.Render("Setting and Characters are required. Please try again."))
			continue
		}

		scenario := fmt.Sprintf("%s in %s: %s", characters, setting, contextText)
		s.hintNearMisses(scenario)
		return scenario, nil
	}
}

// menu shows the scene and the action menu until the user picks new or
// exit. Refinements stay inside the menu loop so the updated scene is
// redisplayed each round.
func (s *Session) menu(ctx context.Context) (exit bool, err error) {
	for {
		s.printScene(s.loop.Scene().CurrentText)

		s.println("")
		s.println("1. [R]efine scene")
		s.println("2. [N]ew scenario")
		s.println("3. [E]xit")
		choice, err := s.readLine(ctx, "Choose action (R/N/E): ")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(choice) {
		case "r", "1":
			if err := s.refine(ctx); err != nil {
				return false, err
			}
		case "n", "2":
			return false, s.loop.Discard()
		case "e", "3":
			return true, nil
		default:
			s.println(warnStyle.Render("Invalid choice, starting new scenario..."))
			return false, s.loop.Discard()
		}
	}
}

// refine asks for revision notes and runs one refinement pass. An unchanged
// result, including the provider-failure echo, keeps the previous version.
func (s *Session) refine(ctx context.Context) error {
	notes, err := s.readLine(ctx, "Refinement notes (e.g. 'More AKIHIKO protein jokes'): ")
	if err != nil {
		return err
	}

	_, adopted, err := s.loop.Refine(ctx, notes)
	if err != nil {
		return err
	}
	if adopted {
		s.println(successStyle.Render("\nRevised scene:"))
	} else {
		s.println(warnStyle.Render("\nUsing previous version due to error"))
	}
	return nil
}

// quit settles the loop and maps end-of-input to a clean exit.
func (s *Session) quit(err error) error {
	switch s.loop.State() {
	case scene.StateGenerated:
		_ = s.loop.Finalize()
	case scene.StateIdle:
		_ = s.loop.Abandon()
	}
	if errors.Is(err, io.EOF) {
		s.println("")
		return nil
	}
	return err
}

// readLine prints a prompt label and reads one trimmed line. Exhausted
// input returns io.EOF; a cancelled context returns its error without
// touching the scanner.
func (s *Session) readLine(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("session: read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// hintNearMisses prints a "did you mean" line for capitalized words that
// almost match a roster name.
func (s *Session) hintNearMisses(scenario string) {
	for _, sug := range extract.Suggestions(scenario, s.roster) {
		s.println(hintStyle.Render(
			fmt.Sprintf("Unknown name %q, did you mean %s?", sug.Word, sug.Candidate)))
	}
}

// printScene renders text between horizontal rules.
func (s *Session) printScene(text string) {
	rule := ruleStyle.Render(strings.Repeat("-", ruleWidth))
	s.println("")
	s.println(rule)
	s.println(sceneStyle.Render(text))
	s.println(rule)
}

func (s *Session) printWelcome() {
	s.println(titleStyle.Render(s.series + " Parody Generator"))
	if len(s.roster) > 0 {
		s.println("Available characters: " + strings.Join(s.roster, ", "))
	}
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.out, line)
}
