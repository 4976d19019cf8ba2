// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for recall.
package config

import (
	"time"

	"github.com/flemzord/recall/internal/score"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Memory     MemoryConfig     `yaml:"memory"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Context    ContextConfig    `yaml:"context,omitempty"`
	Status     StatusConfig     `yaml:"status,omitempty"`
	Telemetry  TelemetryConfig  `yaml:"telemetry,omitempty"`
	Scoring    ScoringConfig    `yaml:"scoring,omitempty"`
}

// MemoryConfig locates the on-disk index and names the default session.
type MemoryConfig struct {
	// IndexPath is the JSON index document. Required.
	IndexPath string `yaml:"index_path"`

	// Session is the session new exchanges land in when the caller
	// does not name one.
	Session string `yaml:"session,omitempty"`

	// MinSignificance filters query results; answered entries scoring
	// below it are dropped.
	MinSignificance float64 `yaml:"min_significance,omitempty"`
}

// ExtractionConfig controls the periodic snapshot job.
type ExtractionConfig struct {
	// Dir is the root directory snapshot directories are created under.
	Dir string `yaml:"dir"`

	// Hours is the lookback window for each extraction run.
	Hours int `yaml:"hours,omitempty"`

	// Schedule is a cron expression for the daemon. Empty disables
	// scheduled extraction.
	Schedule string `yaml:"schedule,omitempty"`

	// Timeout bounds a single extraction run.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ContextConfig shapes the generated context block.
type ContextConfig struct {
	// Window is how many recent exchanges to include.
	Window int `yaml:"window,omitempty"`

	// PreviewLen bounds answer previews.
	PreviewLen int `yaml:"preview_len,omitempty"`
}

// StatusConfig configures the HTTP status endpoint.
type StatusConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:7878". Empty disables
	// the server.
	Addr string `yaml:"addr,omitempty"`
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	// Endpoint is an OTLP/HTTP collector address. Empty disables export.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// ScoringConfig overrides the significance keyword sets. Empty lists
// fall back to the built-in defaults.
type ScoringConfig struct {
	Technical  []string `yaml:"technical,omitempty"`
	Importance []string `yaml:"importance,omitempty"`
	Actionable []string `yaml:"actionable,omitempty"`
}

// Default configuration values applied by Load when a field is unset.
const (
	DefaultHours      = 24
	DefaultTimeout    = 5 * time.Minute
	DefaultSession    = "default"
	DefaultWindow     = 5
	DefaultPreviewLen = 200
)

// Keywords resolves the scoring keyword sets, substituting the built-in
// defaults for any empty list.
func (c *Config) Keywords() score.Keywords {
	kw := score.DefaultKeywords()
	if len(c.Scoring.Technical) > 0 {
		kw.Technical = c.Scoring.Technical
	}
	if len(c.Scoring.Importance) > 0 {
		kw.Importance = c.Scoring.Importance
	}
	if len(c.Scoring.Actionable) > 0 {
		kw.Actionable = c.Scoring.Actionable
	}
	return kw
}

func applyDefaults(cfg *Config) {
	if cfg.Memory.Session == "" {
		cfg.Memory.Session = DefaultSession
	}
	if cfg.Extraction.Hours <= 0 {
		cfg.Extraction.Hours = DefaultHours
	}
	if cfg.Extraction.Timeout <= 0 {
		cfg.Extraction.Timeout = DefaultTimeout
	}
	if cfg.Context.Window <= 0 {
		cfg.Context.Window = DefaultWindow
	}
	if cfg.Context.PreviewLen <= 0 {
		cfg.Context.PreviewLen = DefaultPreviewLen
	}
}
