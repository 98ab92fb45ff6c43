// Package config provides the configuration schema, loader, and provider
// registry for the lampoon scene generation pipeline.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// defaultEpisodeWeight applies when corpus.episode_weight is omitted.
const defaultEpisodeWeight = 10

// Config is the root configuration structure for lampoon.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderEntry  `yaml:"provider"`
	Sampling SamplingConfig `yaml:"sampling"`
	Patterns PatternsConfig `yaml:"patterns"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Archive  ArchiveConfig  `yaml:"archive"`

	// Series is the franchise label woven into the system message and prompt
	// tag line (e.g., "Persona 3"). Empty uses the composer default.
	Series string `yaml:"series"`

	// Seed feeds the shared random source behind tag sampling and prompt
	// composition. Zero seeds from entropy; any other value makes runs
	// reproducible.
	Seed uint64 `yaml:"seed"`
}

// ServerConfig holds logging and the optional metrics listener.
type ServerConfig struct {
	// MetricsAddr is the TCP address for the Prometheus /metrics endpoint
	// (e.g., ":9090"). Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProviderEntry selects and configures the LLM backend. The Name field is
// used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai",
	// "anthropic", "ollama", "openai-compat").
	Name string `yaml:"name"`

	// APIKey authenticates against hosted backends. ${VAR} references are
	// expanded from the environment at load time. When empty, hosted
	// backends fall back to their conventional environment variable
	// (OPENAI_API_KEY and friends).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint. Use it to
	// target a local llama.cpp, vLLM, or LM Studio server.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above (e.g., "organization" for OpenAI).
	Options map[string]any `yaml:"options"`
}

// SamplingProfile tunes one class of completion request.
// Zero-valued fields defer to the pipeline defaults.
type SamplingProfile struct {
	Temperature       float64  `yaml:"temperature"`
	TopP              float64  `yaml:"top_p"`
	MaxTokens         int      `yaml:"max_tokens"`
	RepetitionPenalty float64  `yaml:"repetition_penalty"`
	Stop              []string `yaml:"stop"`
}

// SamplingConfig holds the two request profiles plus the request guard rails.
type SamplingConfig struct {
	// Scenario tunes initial scene generation. Zero fields default to
	// temperature 1.0 and 4000 max tokens.
	Scenario SamplingProfile `yaml:"scenario"`

	// Refinement tunes revision passes. Zero fields default to temperature
	// 1.0 and 2000 max tokens.
	Refinement SamplingProfile `yaml:"refinement"`

	// RequestTimeoutSeconds bounds each individual provider attempt. A timed
	// out attempt counts as a transient failure and is retried. Zero
	// disables the per-attempt timeout.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// RetryBaseDelaySeconds is the exponential backoff unit between retries.
	// Zero means 1 second.
	RetryBaseDelaySeconds int `yaml:"retry_base_delay_seconds"`
}

// PatternsConfig points at the character pattern document and tunes tag
// selection.
type PatternsConfig struct {
	// Path is the JSON pattern document. A missing file degrades to an
	// empty store with a warning.
	Path string `yaml:"path"`

	// TagWeight scales entry replication during weighted tag sampling.
	// Zero means 1.0.
	TagWeight float64 `yaml:"tag_weight"`

	// MaxTags caps the tags selected per character. Zero means 3.
	MaxTags int `yaml:"max_tags"`

	// Strictness in (0, 1] controls tag subsampling; values below 0.5 trade
	// pattern adherence for variety. Zero means 0.6.
	Strictness float64 `yaml:"strictness"`
}

// CorpusConfig points at the script corpus files.
type CorpusConfig struct {
	// ScriptPath is the primary screenplay file. A missing file contributes
	// zero lines with a warning.
	ScriptPath string `yaml:"script_path"`

	// SupplementPath is the optional parody supplement file.
	SupplementPath string `yaml:"supplement_path"`

	// EpisodeWeight is how many times the supplement block is replicated
	// before being appended after the primary lines. Omitted means 10; an
	// explicit 0 skips the supplement.
	EpisodeWeight *int `yaml:"episode_weight"`
}

// ReplicationWeight resolves the effective supplement replication count,
// distinguishing an omitted episode_weight from an explicit zero.
func (c CorpusConfig) ReplicationWeight() int {
	if c.EpisodeWeight == nil {
		return defaultEpisodeWeight
	}
	return *c.EpisodeWeight
}

// ArchiveConfig holds the scene archive destination.
type ArchiveConfig struct {
	// Path is the append-only plain-text archive file. Empty disables
	// archiving.
	Path string `yaml:"path"`
}
