package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/skitlabs/lampoon/internal/observe"
)

// State identifies where a [Loop] is in the scene lifecycle.
type State int

const (
	// StateIdle means no scene is held; the loop awaits a scenario.
	StateIdle State = iota

	// StateGenerated means a scene is held and can be refined, discarded,
	// or finalized.
	StateGenerated

	// StateRefining means a revision request is in flight. Transient; the
	// loop returns to StateGenerated when the request settles.
	StateRefining

	// StateFinalized means the session ended with a scene held. Terminal.
	StateFinalized

	// StateAbandoned means the session ended without ever holding a scene.
	// Terminal.
	StateAbandoned
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerated:
		return "generated"
	case StateRefining:
		return "refining"
	case StateFinalized:
		return "finalized"
	case StateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TransitionError reports an event applied in a state that does not accept it.
type TransitionError struct {
	From  State
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("scene: cannot %s from state %s", e.Event, e.From)
}

// Scene is the live artifact of a [Loop]: the scenario it grew from, its
// current text, and how many refinements have been adopted.
type Scene struct {
	OriginalScenario string
	CurrentText      string
	RevisionCount    int
}

// Archiver persists accepted scene text. Append failures must be tolerable:
// the loop logs and counts them but never aborts the session.
type Archiver interface {
	Append(text string) error
}

// Loop drives a scene through its lifecycle: generate, refine repeatedly,
// then finalize or discard. Every adopted text is archived immediately so an
// abnormal session end loses nothing already accepted.
//
// A Loop is single-owner, like the Generator it wraps.
type Loop struct {
	gen     *Generator
	archive Archiver
	metrics *observe.Metrics

	state State
	scene Scene
}

// NewLoop creates a Loop in [StateIdle]. archive may be nil, which disables
// persistence.
func NewLoop(gen *Generator, archive Archiver, metrics *observe.Metrics) (*Loop, error) {
	if gen == nil {
		return nil, errors.New("scene: Generator must not be nil")
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Loop{gen: gen, archive: archive, metrics: metrics, state: StateIdle}, nil
}

// State returns the loop's current lifecycle state.
func (l *Loop) State() State { return l.state }

// Scene returns a copy of the live scene. Meaningful once the loop has left
// [StateIdle].
func (l *Loop) Scene() Scene { return l.scene }

// Start runs the scenario pipeline and moves Idle → Generated. Generated
// text is archived immediately; a fallback message still enters Generated
// (the user decides what to do with it) but is not archived.
func (l *Loop) Start(ctx context.Context, scenario string) (Result, error) {
	if l.state != StateIdle {
		return Result{}, &TransitionError{From: l.state, Event: "start"}
	}

	res, err := l.gen.Scenario(ctx, scenario)
	if err != nil {
		return Result{}, err
	}

	l.scene = Scene{OriginalScenario: scenario, CurrentText: res.Text}
	l.state = StateGenerated

	if !res.Fallback {
		l.archiveText(ctx, res.Text)
	}
	return res, nil
}

// Refine runs one revision pass and reports whether the new text was
// adopted. An unchanged result — including the failure echo — leaves the
// scene as is: a warning is logged and no duplicate archive entry is
// written. An adopted result replaces the scene text, bumps the revision
// count, and is archived.
func (l *Loop) Refine(ctx context.Context, notes string) (res Result, adopted bool, err error) {
	if l.state != StateGenerated {
		return Result{}, false, &TransitionError{From: l.state, Event: "refine"}
	}

	l.state = StateRefining
	res, err = l.gen.Refine(ctx, l.scene.OriginalScenario, l.scene.CurrentText, notes)
	l.state = StateGenerated
	if err != nil {
		return Result{}, false, err
	}

	if res.Text == l.scene.CurrentText {
		observe.Logger(ctx).Warn("refinement returned unchanged text, keeping previous scene",
			"fallback", res.Fallback,
			"revisions", l.scene.RevisionCount)
		return res, false, nil
	}

	l.scene.CurrentText = res.Text
	l.scene.RevisionCount++
	l.metrics.SceneRevisions.Add(ctx, 1)
	l.archiveText(ctx, res.Text)
	return res, true, nil
}

// Discard drops the current scene and returns to Idle so a new scenario can
// start. Text archived so far stays archived.
func (l *Loop) Discard() error {
	if l.state != StateGenerated {
		return &TransitionError{From: l.state, Event: "discard"}
	}
	l.scene = Scene{}
	l.state = StateIdle
	return nil
}

// Finalize ends the session with the current scene held. Terminal; nothing
// further is written beyond what each successful step already persisted.
func (l *Loop) Finalize() error {
	if l.state != StateGenerated {
		return &TransitionError{From: l.state, Event: "finalize"}
	}
	l.state = StateFinalized
	return nil
}

// Abandon ends the session from Idle without ever generating. Terminal.
func (l *Loop) Abandon() error {
	if l.state != StateIdle {
		return &TransitionError{From: l.state, Event: "abandon"}
	}
	l.state = StateAbandoned
	return nil
}

// archiveText appends text to the archive. Failures are logged and counted,
// never fatal: losing an archive entry must not end the session.
func (l *Loop) archiveText(ctx context.Context, text string) {
	if l.archive == nil {
		return
	}
	if err := l.archive.Append(text); err != nil {
		observe.Logger(ctx).Warn("archive append failed", "error", err)
		l.metrics.RecordArchiveFailure(ctx)
	}
}
