// Package config defines the talkgraph configuration schema and its defaults.
//
// Every threshold and window used by the analyzers lives here so that no
// stage carries a hard-coded constant. [Default] returns values matching the
// stock heuristics; [Validate] rejects out-of-range values rather than
// clamping them.
package config

import "log/slog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l onto a [slog.Level]. Unknown levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration.
type Config struct {
	LogLevel      LogLevel      `yaml:"log_level"`
	Interruption  Interruption  `yaml:"interruption"`
	Agenda        Agenda        `yaml:"agenda"`
	Topics        Topics        `yaml:"topics"`
	Relational    Relational    `yaml:"relational"`
	Orientation   Orientation   `yaml:"orientation"`
	Similarity    Similarity    `yaml:"similarity"`
	Participation Participation `yaml:"participation"`
	Embeddings    Embeddings    `yaml:"embeddings"`
	Store         Store         `yaml:"store"`
}

// Interruption configures the interruption analyzer.
type Interruption struct {
	// GapThreshold is the maximum gap (seconds) between different speakers
	// still counted as an interruption attempt. Negative gaps always count.
	GapThreshold float64 `yaml:"gap_threshold"`

	// FloorTolerance is how long (seconds) after the interrupted turn's end
	// the interrupted speaker may resume and still keep the floor.
	FloorTolerance float64 `yaml:"floor_tolerance"`
}

// Agenda configures agenda-control detection.
type Agenda struct {
	SilenceThreshold float64 `yaml:"silence_threshold"`
}

// Topics configures the topic lifecycle tracker.
type Topics struct {
	NoveltyThreshold float64 `yaml:"novelty_threshold"`
	WindowSize       int     `yaml:"window_size"`
	MinWords         int     `yaml:"min_words"`
	UptakeThreshold  float64 `yaml:"uptake_threshold"`
	ResponseWindow   float64 `yaml:"response_window"`
	SilenceGap       float64 `yaml:"silence_gap"`
}

// Relational configures the relational power analyzers.
type Relational struct {
	ClosureWindow        float64 `yaml:"closure_window"`
	ClosureThreshold     float64 `yaml:"closure_threshold"`
	ClosureFollowers     int     `yaml:"closure_followers"`
	AccountabilityWindow float64 `yaml:"accountability_window"`
	RecyclingThreshold   float64 `yaml:"recycling_threshold"`
	ShiftBelow           float64 `yaml:"shift_below"`
	ReframeAt            float64 `yaml:"reframe_at"`
	AlignAt              float64 `yaml:"align_at"`
}

// Orientation configures the redirection and monopolization heuristics.
// The defaults are the values the heuristics were studied at; they are not
// known to generalize.
type Orientation struct {
	RedirectionLow       float64 `yaml:"redirection_low"`
	RedirectionHigh      float64 `yaml:"redirection_high"`
	MonopolizationRatio  float64 `yaml:"monopolization_ratio"`
	MonopolizationWindow float64 `yaml:"monopolization_window"`
}

// Similarity configures the vector-space similarity strategy.
type Similarity struct {
	MaxFeatures int `yaml:"max_features"`
}

// Participation configures participation slicing.
type Participation struct {
	Slices int `yaml:"slices"`
}

// Embeddings configures the optional external embedding provider. An empty
// Provider disables embeddings.
type Embeddings struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Concurrency int    `yaml:"concurrency"`
	// BatchSize is the number of turn texts sent per provider request.
	BatchSize int `yaml:"batch_size"`
}

// Store configures persistence.
type Store struct {
	Path string `yaml:"path"`
}

// Default returns the stock thresholds.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Interruption: Interruption{
			GapThreshold:   0.5,
			FloorTolerance: 2.0,
		},
		Agenda: Agenda{SilenceThreshold: 2.0},
		Topics: Topics{
			NoveltyThreshold: 0.25,
			WindowSize:       5,
			MinWords:         3,
			UptakeThreshold:  0.3,
			ResponseWindow:   30,
			SilenceGap:       5.0,
		},
		Relational: Relational{
			ClosureWindow:        60,
			ClosureThreshold:     0.3,
			ClosureFollowers:     4,
			AccountabilityWindow: 30,
			RecyclingThreshold:   0.4,
			ShiftBelow:           0.3,
			ReframeAt:            0.45,
			AlignAt:              0.6,
		},
		Orientation: Orientation{
			RedirectionLow:       0.3,
			RedirectionHigh:      0.6,
			MonopolizationRatio:  2.0,
			MonopolizationWindow: 30,
		},
		Similarity:    Similarity{MaxFeatures: 100},
		Participation: Participation{Slices: 20},
		Embeddings:    Embeddings{Concurrency: 4, BatchSize: 32},
	}
}
