package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateFPS(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 1 {
		return errors.New("scan.workers must be at least 1")
	}
	if c.Scan.MinSize < 0 {
		return errors.New("scan.min_size must not be negative")
	}
	return nil
}

func (c *Config) validateFPS() error {
	if c.ALE.FPS < 1 {
		return fmt.Errorf("ale.fps must be positive, got %d", c.ALE.FPS)
	}
	if c.AAF.FPS < 1 {
		return fmt.Errorf("aaf.fps must be positive, got %d", c.AAF.FPS)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
