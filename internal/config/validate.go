package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config: the version
// field, required paths, scheduling expressions, and value ranges.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if cfg.Memory.IndexPath == "" {
		errs = append(errs, errors.New("config: memory.index_path is required"))
	}
	if cfg.Memory.MinSignificance < 0 || cfg.Memory.MinSignificance > 1 {
		errs = append(errs, fmt.Errorf("config: memory.min_significance %v out of range [0, 1]", cfg.Memory.MinSignificance))
	}

	if cfg.Extraction.Dir == "" {
		errs = append(errs, errors.New("config: extraction.dir is required"))
	}
	if cfg.Extraction.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Extraction.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("config: extraction.schedule %q: %w", cfg.Extraction.Schedule, err))
		}
	}

	return errors.Join(errs...)
}
