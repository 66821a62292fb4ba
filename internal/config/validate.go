package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}
	if err := c.Import.validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := c.Media.validate(); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	return nil
}

func (s *SRSConfig) validate() error {
	if s.MinEaseFactor <= 0 {
		return fmt.Errorf("min_ease_factor must be > 0 (got %v)", s.MinEaseFactor)
	}
	if s.DefaultEaseFactor < s.MinEaseFactor {
		return fmt.Errorf("default_ease_factor must be >= min_ease_factor (got %v < %v)",
			s.DefaultEaseFactor, s.MinEaseFactor)
	}
	if s.DailyNewGoal < 0 {
		return fmt.Errorf("daily_new_goal must be >= 0 (got %d)", s.DailyNewGoal)
	}
	if s.QueueLimitMax <= 0 {
		return fmt.Errorf("queue_limit_max must be > 0 (got %d)", s.QueueLimitMax)
	}
	return nil
}

func (i *ImportConfig) validate() error {
	if strings.TrimSpace(i.WorkDir) == "" {
		return fmt.Errorf("work_dir must not be empty")
	}
	if i.MaxArchiveBytes <= 0 {
		return fmt.Errorf("max_archive_bytes must be > 0 (got %d)", i.MaxArchiveBytes)
	}
	return nil
}

func (m *MediaConfig) validate() error {
	if strings.TrimSpace(m.Dir) == "" {
		return fmt.Errorf("dir must not be empty")
	}
	if m.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	return nil
}
