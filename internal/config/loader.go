package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigurationError reports one or more invalid configuration values.
// Err joins every individual problem found.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "config: invalid configuration: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidProviders lists the embedding providers [Validate] accepts.
var ValidProviders = map[string]bool{
	"":       true,
	"ollama": true,
	"openai": true,
}

// Load reads the YAML file at path on top of [Default] and validates it.
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

// LoadFromReader decodes YAML from r on top of [Default] and validates the
// result. Fields absent from the document keep their default values.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every threshold and window. It returns a
// *[ConfigurationError] listing all failures, or nil.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	nonNegative := func(name string, v float64) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %v", name, v))
		}
	}
	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	positiveInt := func(name string, v int) {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be >= 1, got %d", name, v))
		}
	}

	nonNegative("interruption.gap_threshold", cfg.Interruption.GapThreshold)
	nonNegative("interruption.floor_tolerance", cfg.Interruption.FloorTolerance)
	nonNegative("agenda.silence_threshold", cfg.Agenda.SilenceThreshold)

	t := cfg.Topics
	unit("topics.novelty_threshold", t.NoveltyThreshold)
	unit("topics.uptake_threshold", t.UptakeThreshold)
	positiveInt("topics.window_size", t.WindowSize)
	if t.MinWords < 0 {
		errs = append(errs, fmt.Errorf("topics.min_words must be >= 0, got %d", t.MinWords))
	}
	nonNegative("topics.response_window", t.ResponseWindow)
	nonNegative("topics.silence_gap", t.SilenceGap)

	rel := cfg.Relational
	nonNegative("relational.closure_window", rel.ClosureWindow)
	unit("relational.closure_threshold", rel.ClosureThreshold)
	if rel.ClosureFollowers < 0 {
		errs = append(errs, fmt.Errorf("relational.closure_followers must be >= 0, got %d", rel.ClosureFollowers))
	}
	nonNegative("relational.accountability_window", rel.AccountabilityWindow)
	unit("relational.recycling_threshold", rel.RecyclingThreshold)
	unit("relational.shift_below", rel.ShiftBelow)
	unit("relational.reframe_at", rel.ReframeAt)
	unit("relational.align_at", rel.AlignAt)
	if rel.ShiftBelow > rel.ReframeAt || rel.ReframeAt > rel.AlignAt {
		errs = append(errs, fmt.Errorf("relational bands must satisfy shift_below <= reframe_at <= align_at, got %v, %v, %v",
			rel.ShiftBelow, rel.ReframeAt, rel.AlignAt))
	}

	o := cfg.Orientation
	unit("orientation.redirection_low", o.RedirectionLow)
	unit("orientation.redirection_high", o.RedirectionHigh)
	if o.RedirectionLow > o.RedirectionHigh {
		errs = append(errs, fmt.Errorf("orientation.redirection_low (%v) exceeds redirection_high (%v)", o.RedirectionLow, o.RedirectionHigh))
	}
	if o.MonopolizationRatio <= 0 {
		errs = append(errs, fmt.Errorf("orientation.monopolization_ratio must be > 0, got %v", o.MonopolizationRatio))
	}
	nonNegative("orientation.monopolization_window", o.MonopolizationWindow)

	positiveInt("similarity.max_features", cfg.Similarity.MaxFeatures)
	positiveInt("participation.slices", cfg.Participation.Slices)

	if !ValidProviders[cfg.Embeddings.Provider] {
		errs = append(errs, fmt.Errorf("embeddings.provider %q is invalid; valid values: ollama, openai", cfg.Embeddings.Provider))
	}
	if cfg.Embeddings.Provider != "" {
		positiveInt("embeddings.concurrency", cfg.Embeddings.Concurrency)
		positiveInt("embeddings.batch_size", cfg.Embeddings.BatchSize)
	}

	if len(errs) == 0 {
		return nil
	}
	return &ConfigurationError{Err: errors.Join(errs...)}
}
