// Package app wires all lampoon subsystems into a running pipeline.
//
// New loads the data files named in the config, builds the prompt pipeline
// over one shared random source, and assembles the scene loop. The LLM
// provider is passed in by main (built via the config registry).
//
// For testing, inject doubles via functional options (WithArchiver,
// WithMetrics). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/skitlabs/lampoon/internal/archive"
	"github.com/skitlabs/lampoon/internal/config"
	"github.com/skitlabs/lampoon/internal/corpus"
	"github.com/skitlabs/lampoon/internal/observe"
	"github.com/skitlabs/lampoon/internal/pattern"
	"github.com/skitlabs/lampoon/internal/prompt"
	"github.com/skitlabs/lampoon/internal/resilience"
	"github.com/skitlabs/lampoon/internal/scene"
	"github.com/skitlabs/lampoon/pkg/provider/llm"
)

// generalVibeCount is how many GENERAL tags surface under "Character vibes"
// in every scenario prompt.
const generalVibeCount = 3

// App owns the assembled generation pipeline: pattern store, script corpus,
// composer, generator, and the scene loop around them.
//
// An App is single-owner, like the loop it wraps: one interactive session or
// one one-shot invocation at a time.
type App struct {
	cfg *config.Config

	provider llm.Provider
	patterns *pattern.Store
	corpus   *corpus.Corpus
	metrics  *observe.Metrics
	gen      *scene.Generator
	loop     *scene.Loop

	// archiver is resolved from the config unless archiverSet records an
	// explicit injection, which may legitimately be nil.
	archiver    scene.Archiver
	archiverSet bool
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithArchiver injects an archiver instead of creating one from the config.
// Passing nil is meaningful: it disables persistence even when the config
// names an archive path.
func WithArchiver(a scene.Archiver) Option {
	return func(app *App) {
		app.archiver = a
		app.archiverSet = true
	}
}

// WithMetrics injects a metrics set instead of the process-wide default.
func WithMetrics(m *observe.Metrics) Option {
	return func(app *App) { app.metrics = m }
}

// New assembles the pipeline from cfg. The provider comes from main.go
// (populated via the config registry); everything else is created here.
//
// Ordering matters in one place: the tag weighter and the prompt composer
// share a single random source, so a non-zero cfg.Seed reproduces an entire
// run, tag sampling and composer choices included.
func New(cfg *config.Config, provider llm.Provider, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config must not be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("app: provider must not be nil")
	}

	a := &App{cfg: cfg, provider: provider}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Data files ─────────────────────────────────────────────────────
	store, err := pattern.Load(cfg.Patterns.Path)
	if err != nil {
		return nil, fmt.Errorf("app: load patterns: %w", err)
	}
	a.patterns = store

	a.corpus = corpus.Load(corpus.LoadConfig{
		ScriptPath:     cfg.Corpus.ScriptPath,
		SupplementPath: cfg.Corpus.SupplementPath,
		EpisodeWeight:  cfg.Corpus.ReplicationWeight(),
	})

	// ── 2. Prompt pipeline ────────────────────────────────────────────────
	rng := newRand(cfg.Seed)
	weighter := pattern.NewWeighter(store, pattern.WeighterConfig{
		TagWeight:  cfg.Patterns.TagWeight,
		MaxTags:    cfg.Patterns.MaxTags,
		Strictness: cfg.Patterns.Strictness,
	}, rng)
	composer := prompt.NewComposer(prompt.Config{
		Series: cfg.Series,
		Vibes:  store.GeneralVibes(generalVibeCount),
	}, rng)

	// ── 3. Generator ──────────────────────────────────────────────────────
	gen, err := scene.NewGenerator(scene.GeneratorConfig{
		Provider:           provider,
		ProviderName:       cfg.Provider.Name,
		Patterns:           store,
		Weighter:           weighter,
		Corpus:             a.corpus,
		Composer:           composer,
		Retrier:            a.newRetrier(),
		Metrics:            a.metrics,
		ScenarioSampling:   sampling(cfg.Sampling.Scenario),
		RefinementSampling: sampling(cfg.Sampling.Refinement),
	})
	if err != nil {
		return nil, fmt.Errorf("app: build generator: %w", err)
	}
	a.gen = gen

	// ── 4. Archive + loop ─────────────────────────────────────────────────
	if !a.archiverSet && cfg.Archive.Path != "" {
		a.archiver = archive.NewStore(cfg.Archive.Path)
	}
	loop, err := scene.NewLoop(gen, a.archiver, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("app: build loop: %w", err)
	}
	a.loop = loop

	return a, nil
}

// Loop returns the scene loop driving the generate → refine lifecycle.
func (a *App) Loop() *scene.Loop { return a.loop }

// Patterns returns the loaded trait-tag store. The roster feeds the session's
// character listing and the extractor's near-miss suggestions.
func (a *App) Patterns() *pattern.Store { return a.patterns }

// Corpus returns the loaded script corpus.
func (a *App) Corpus() *corpus.Corpus { return a.corpus }

// newRetrier builds the retry policy from the sampling config. Zero config
// values keep the package defaults; OnRetry feeds the retry counter.
func (a *App) newRetrier() *resilience.Retrier {
	metrics, name := a.metrics, a.cfg.Provider.Name
	if name == "" {
		name = "llm"
	}
	return resilience.NewRetrier(resilience.RetryConfig{
		Name:           name,
		BaseDelay:      time.Duration(a.cfg.Sampling.RetryBaseDelaySeconds) * time.Second,
		AttemptTimeout: time.Duration(a.cfg.Sampling.RequestTimeoutSeconds) * time.Second,
		OnRetry: func(ctx context.Context, attempt int, delay time.Duration, err error) {
			metrics.RecordProviderRetry(ctx, name)
		},
	})
}

// sampling converts a config profile into the generator's request profile.
// A zero profile keeps the generator's package defaults.
func sampling(p config.SamplingProfile) scene.Sampling {
	return scene.Sampling{
		Temperature:       p.Temperature,
		TopP:              p.TopP,
		MaxTokens:         p.MaxTokens,
		RepetitionPenalty: p.RepetitionPenalty,
		Stop:              p.Stop,
	}
}

// newRand builds the run's shared random source. Seed 0 draws from entropy;
// any other value yields a reproducible run.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
