package config

import (
	"errors"
	"fmt"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/record"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Inputs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("inputs: %w", err))
	}

	if _, err := compare.ParseFeatures(c.Features); err != nil {
		errs = append(errs, fmt.Errorf("features: %w", err))
	}

	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}

	if err := c.Histogram.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("histogram: %w", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (i *InputsConfig) Validate() error {
	var errs []error

	if _, err := record.ParseFormat(i.A.Format); err != nil {
		errs = append(errs, fmt.Errorf("a: %w", err))
	}
	if _, err := record.ParseFormat(i.B.Format); err != nil {
		errs = append(errs, fmt.Errorf("b: %w", err))
	}

	return errors.Join(errs...)
}

func (s *SchedulerConfig) Validate() error {
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", s.Workers)
	}
	return nil
}

func (h *HistogramConfig) Validate() error {
	if h.Bins < 1 {
		return fmt.Errorf("bins must be at least 1, got %d", h.Bins)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	switch l.Format {
	case "text", "json", "":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	return nil
}
