package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the provider names the default registry wires up.
// Used by [Validate] to warn about likely typos; unknown names are not an
// error because callers may register their own factories.
var ValidProviderNames = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq",
	"llamacpp", "llamafile", "openai-compat",
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, expands environment references
// in credential fields, and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	// ${VAR} references let config files be committed without secrets.
	cfg.Provider.APIKey = os.ExpandEnv(cfg.Provider.APIKey)
	cfg.Provider.BaseURL = os.ExpandEnv(cfg.Provider.BaseURL)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider — name and model are hard requirements: without them the
	// pipeline cannot issue a single request, so startup must fail early.
	if cfg.Provider.Name == "" {
		errs = append(errs, errors.New("provider.name is required"))
	} else if !slices.Contains(ValidProviderNames, cfg.Provider.Name) {
		slog.Warn("unknown provider name — may be a typo or a custom registration",
			"name", cfg.Provider.Name,
			"known", ValidProviderNames)
	}
	if cfg.Provider.Model == "" {
		errs = append(errs, errors.New("provider.model is required"))
	}
	if cfg.Provider.APIKey == "" && isHosted(cfg.Provider.Name) {
		slog.Warn("provider.api_key is empty; relying on the backend's environment variable",
			"provider", cfg.Provider.Name)
	}

	// Sampling
	errs = append(errs, validateProfile("sampling.scenario", cfg.Sampling.Scenario)...)
	errs = append(errs, validateProfile("sampling.refinement", cfg.Sampling.Refinement)...)
	if cfg.Sampling.RequestTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("sampling.request_timeout_seconds %d must not be negative", cfg.Sampling.RequestTimeoutSeconds))
	}
	if cfg.Sampling.RetryBaseDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("sampling.retry_base_delay_seconds %d must not be negative", cfg.Sampling.RetryBaseDelaySeconds))
	}

	// Patterns
	if cfg.Patterns.TagWeight < 0 {
		errs = append(errs, fmt.Errorf("patterns.tag_weight %.2f must not be negative", cfg.Patterns.TagWeight))
	}
	if cfg.Patterns.MaxTags < 0 {
		errs = append(errs, fmt.Errorf("patterns.max_tags %d must not be negative", cfg.Patterns.MaxTags))
	}
	if s := cfg.Patterns.Strictness; s < 0 || s > 1 {
		errs = append(errs, fmt.Errorf("patterns.strictness %.2f is out of range (0, 1]", s))
	}

	// Corpus
	if w := cfg.Corpus.EpisodeWeight; w != nil && *w < 0 {
		errs = append(errs, fmt.Errorf("corpus.episode_weight %d must not be negative", *w))
	}

	return errors.Join(errs...)
}

// validateProfile range-checks one sampling profile. Zero values are always
// accepted: they mean "use the default".
func validateProfile(prefix string, p SamplingProfile) []error {
	var errs []error
	if p.Temperature < 0 || p.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%s.temperature %.2f is out of range [0, 2]", prefix, p.Temperature))
	}
	if p.TopP < 0 || p.TopP > 1 {
		errs = append(errs, fmt.Errorf("%s.top_p %.2f is out of range [0, 1]", prefix, p.TopP))
	}
	if p.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("%s.max_tokens %d must not be negative", prefix, p.MaxTokens))
	}
	if p.RepetitionPenalty < 0 {
		errs = append(errs, fmt.Errorf("%s.repetition_penalty %.2f must not be negative", prefix, p.RepetitionPenalty))
	}
	return errs
}

// isHosted reports whether the named backend needs an API credential.
// Local servers accept any (or no) token.
func isHosted(name string) bool {
	switch name {
	case "", "ollama", "llamacpp", "llamafile", "openai-compat":
		return false
	}
	return true
}
