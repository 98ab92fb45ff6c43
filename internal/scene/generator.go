package scene

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skitlabs/lampoon/internal/corpus"
	"github.com/skitlabs/lampoon/internal/extract"
	"github.com/skitlabs/lampoon/internal/observe"
	"github.com/skitlabs/lampoon/internal/pattern"
	"github.com/skitlabs/lampoon/internal/prompt"
	"github.com/skitlabs/lampoon/internal/resilience"
	"github.com/skitlabs/lampoon/pkg/provider/llm"
)

// Cache namespaces. Scenario results key on the full composed prompt;
// refinement results key on previous scene text plus notes. The two
// keyspaces are held in separate Cache instances and never cross-checked.
const (
	namespaceScenario   = "scenario"
	namespaceRefinement = "refinement"
)

// Stage labels used in metrics and span names.
const (
	stageScenario   = "scenario"
	stageRefinement = "refinement"
)

// Fallback texts substituted when generation fails despite the retry budget.
// They are rendered to the user in place of a scene and are never cached.
const (
	fallbackNetwork    = "Could not generate parody - network connection error occurred!"
	fallbackAPI        = "Could not generate parody - API error occurred!"
	fallbackUnexpected = "Could not generate parody - an unexpected error occurred!"
)

// Sampling bundles the sampling knobs applied to one request profile.
// Zero-valued fields defer to the provider's defaults.
type Sampling struct {
	// Temperature controls output randomness; scene generation runs hot.
	Temperature float64

	// TopP enables nucleus sampling on providers that support it.
	TopP float64

	// MaxTokens caps the completion length.
	MaxTokens int

	// RepetitionPenalty discourages loops on llama.cpp-style backends.
	RepetitionPenalty float64

	// Stop lists extra stop sequences forwarded to the provider. The
	// normalizer cuts at the scene sentinel regardless, so this is usually
	// left empty.
	Stop []string
}

// isZero reports whether no knob is set, so the profile defaults apply.
func (s Sampling) isZero() bool {
	return s.Temperature == 0 && s.TopP == 0 && s.MaxTokens == 0 &&
		s.RepetitionPenalty == 0 && len(s.Stop) == 0
}

// Default sampling profiles: long-form scenario generation and the shorter
// refinement pass.
var (
	DefaultScenarioSampling   = Sampling{Temperature: 1.0, MaxTokens: 4000}
	DefaultRefinementSampling = Sampling{Temperature: 1.0, MaxTokens: 2000}
)

// Result is the outcome of one pipeline run.
type Result struct {
	// Text is the scene shown to the user. On failure it carries a fixed
	// fallback message instead of generated content.
	Text string

	// CacheHit reports that Text was served from the response cache without
	// a provider call.
	CacheHit bool

	// Fallback reports that generation failed and Text is a substitute
	// message (scenario path) or an echo of the previous scene (refinement
	// path) rather than fresh content. Fallback results are never cached.
	Fallback bool
}

// GeneratorConfig holds all dependencies needed to create a [Generator].
//
// Required fields are Provider, Patterns, Weighter, Corpus, and Composer.
// Everything else defaults to a sensible value when zero.
type GeneratorConfig struct {
	// Provider executes completion requests. Must not be nil.
	Provider llm.Provider

	// ProviderName labels the provider in logs and metrics. Default: "llm".
	ProviderName string

	// Patterns is the loaded trait-tag store. Must not be nil; an empty
	// store is fine and simply yields prompts without character traits.
	Patterns *pattern.Store

	// Weighter selects trait tags per character. Must not be nil.
	Weighter *pattern.Weighter

	// Corpus holds the script lines used for context retrieval. Must not be
	// nil; an empty corpus yields prompts without story context.
	Corpus *corpus.Corpus

	// Composer renders generation and refinement prompts. Must not be nil.
	Composer *prompt.Composer

	// Retrier guards completion calls. When nil, a Retrier with the default
	// backoff policy is created that reports retries to Metrics.
	Retrier *resilience.Retrier

	// Metrics receives counters and latencies. Defaults to
	// [observe.DefaultMetrics].
	Metrics *observe.Metrics

	// ScenarioSampling and RefinementSampling tune the two request profiles.
	// Zero values fall back to the package defaults.
	ScenarioSampling   Sampling
	RefinementSampling Sampling
}

// Generator runs the scenario and refinement pipelines. It owns the two
// response caches; see [Cache] for the keying discipline.
//
// A Generator is not safe for concurrent use: the weighter and composer own
// a shared seeded random source, and the interactive session is
// single-flight by design.
type Generator struct {
	provider     llm.Provider
	providerName string
	patterns     *pattern.Store
	weighter     *pattern.Weighter
	corpus       *corpus.Corpus
	composer     *prompt.Composer
	retrier      *resilience.Retrier
	metrics      *observe.Metrics

	scenarioCache   *Cache
	refinementCache *Cache

	scenarioSampling   Sampling
	refinementSampling Sampling
}

// NewGenerator creates a [Generator] from the given configuration.
//
// Errors are prefixed with "scene: ".
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Provider == nil {
		return nil, errors.New("scene: Provider must not be nil")
	}
	if cfg.Patterns == nil {
		return nil, errors.New("scene: Patterns must not be nil")
	}
	if cfg.Weighter == nil {
		return nil, errors.New("scene: Weighter must not be nil")
	}
	if cfg.Corpus == nil {
		return nil, errors.New("scene: Corpus must not be nil")
	}
	if cfg.Composer == nil {
		return nil, errors.New("scene: Composer must not be nil")
	}
	if cfg.ProviderName == "" {
		cfg.ProviderName = "llm"
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	if cfg.Retrier == nil {
		metrics, name := cfg.Metrics, cfg.ProviderName
		cfg.Retrier = resilience.NewRetrier(resilience.RetryConfig{
			Name: name,
			OnRetry: func(ctx context.Context, attempt int, delay time.Duration, err error) {
				metrics.RecordProviderRetry(ctx, name)
			},
		})
	}
	if cfg.ScenarioSampling.isZero() {
		cfg.ScenarioSampling = DefaultScenarioSampling
	}
	if cfg.RefinementSampling.isZero() {
		cfg.RefinementSampling = DefaultRefinementSampling
	}

	return &Generator{
		provider:           cfg.Provider,
		providerName:       cfg.ProviderName,
		patterns:           cfg.Patterns,
		weighter:           cfg.Weighter,
		corpus:             cfg.Corpus,
		composer:           cfg.Composer,
		retrier:            cfg.Retrier,
		metrics:            cfg.Metrics,
		scenarioCache:      NewCache(namespaceScenario, cfg.Metrics),
		refinementCache:    NewCache(namespaceRefinement, cfg.Metrics),
		scenarioSampling:   cfg.ScenarioSampling,
		refinementSampling: cfg.RefinementSampling,
	}, nil
}

// Scenario runs the full generation pipeline for new scenario text.
//
// Provider failures are absorbed: once the retry budget is exhausted, the
// returned Result carries a fixed fallback message with Fallback set and the
// error is nil. Only context cancellation surfaces as an error.
func (g *Generator) Scenario(ctx context.Context, scenario string) (Result, error) {
	ctx, span := observe.StartSpan(ctx, "scene.scenario")
	defer span.End()
	log := observe.Logger(ctx)
	start := time.Now()

	// 1. Extract known characters and an optional location from the raw text.
	characters := extract.Characters(scenario, g.patterns.Roster())
	location := extract.Location(scenario)

	// 2. Select weighted trait tags for each extracted character.
	profiles := make([]prompt.Profile, 0, len(characters))
	for _, name := range characters {
		profiles = append(profiles, prompt.Profile{Name: name, Tags: g.weighter.Tags(name)})
	}

	// 3. Retrieve grounding lines from the script corpus.
	contextLines := g.corpus.Relevant(corpus.Query{Characters: characters, Location: location})

	// 4. Compose the prompt. The worked-example draw makes every composition
	//    distinct, and the cache keys on the rendered prompt text.
	promptText := g.composer.Scenario(scenario, contextLines, profiles)

	// 5. Serve from cache, or generate and normalize.
	text, hit, err := g.scenarioCache.GetOrCompute(ctx, promptText, func(ctx context.Context) (string, error) {
		return g.complete(ctx, g.composer.System(), promptText, g.scenarioSampling)
	})
	g.metrics.RecordGeneration(ctx, stageScenario, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{}, fmt.Errorf("scene: scenario: %w", err)
		}
		log.Error("scenario generation failed, substituting fallback",
			"error", err,
			"characters", characters,
			"location", location)
		return Result{Text: fallbackFor(err), Fallback: true}, nil
	}

	if !hit {
		g.metrics.ScenesGenerated.Add(ctx, 1)
	}
	log.Info("scene ready",
		"cache_hit", hit,
		"characters", characters,
		"location", location,
		"length", len(text))
	return Result{Text: text, CacheHit: hit}, nil
}

// Refine runs one revision pass against the current scene.
//
// The refinement cache keys on (previousScene, notes), independent of the
// scenario cache. Provider failures echo the previous scene back with
// Fallback set, so a caller comparing old and new text sees the failure as
// "unchanged". Only context cancellation surfaces as an error.
func (g *Generator) Refine(ctx context.Context, scenario, previousScene, notes string) (Result, error) {
	ctx, span := observe.StartSpan(ctx, "scene.refine")
	defer span.End()
	log := observe.Logger(ctx)
	start := time.Now()

	system, user := g.composer.Refinement(scenario, previousScene, notes)

	text, hit, err := g.refinementCache.GetOrCompute(ctx, previousScene+notes, func(ctx context.Context) (string, error) {
		return g.complete(ctx, system, user, g.refinementSampling)
	})
	g.metrics.RecordGeneration(ctx, stageRefinement, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{}, fmt.Errorf("scene: refine: %w", err)
		}
		log.Error("refinement failed, keeping previous scene", "error", err)
		return Result{Text: previousScene, Fallback: true}, nil
	}

	log.Info("refinement ready", "cache_hit", hit, "length", len(text))
	return Result{Text: text, CacheHit: hit}, nil
}

// complete sends one completion request through the retry layer and
// normalizes the raw response.
func (g *Generator) complete(ctx context.Context, system, user string, sampling Sampling) (string, error) {
	req := llm.CompletionRequest{
		Messages:          []llm.Message{{Role: "user", Content: user}},
		Temperature:       sampling.Temperature,
		TopP:              sampling.TopP,
		MaxTokens:         sampling.MaxTokens,
		RepetitionPenalty: sampling.RepetitionPenalty,
		Stop:              sampling.Stop,
		SystemPrompt:      system,
	}

	resp, err := resilience.DoWithResult(ctx, g.retrier, func(ctx context.Context) (*llm.CompletionResponse, error) {
		r, callErr := g.provider.Complete(ctx, req)
		if callErr != nil {
			g.metrics.RecordProviderRequest(ctx, g.providerName, "error")
			return nil, callErr
		}
		g.metrics.RecordProviderRequest(ctx, g.providerName, "ok")
		return r, nil
	})
	if err != nil {
		return "", err
	}
	return Normalize(resp.Content), nil
}

// fallbackFor maps a generation error to the user-facing substitute text,
// mirroring the connection/API/unexpected split the messages describe.
func fallbackFor(err error) string {
	var reqErr *llm.RequestError
	switch {
	case errors.As(err, &reqErr) && reqErr.StatusCode > 0:
		return fallbackAPI
	case errors.As(err, &reqErr), errors.Is(err, context.DeadlineExceeded):
		return fallbackNetwork
	default:
		return fallbackUnexpected
	}
}
