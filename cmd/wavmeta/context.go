package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cwbudde/wavmeta/internal/config"
	"github.com/cwbudde/wavmeta/internal/logging"
	"github.com/cwbudde/wavmeta/internal/ucs"
)

type commandContext struct {
	configFlag    string
	logLevelFlag  string
	logFormatFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the command logger; flags override the config file.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}

		opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
		if c.logLevelFlag != "" {
			opts.Level = c.logLevelFlag
		}
		if c.logFormatFlag != "" {
			opts.Format = c.logFormatFlag
		}

		c.logger, c.loggerErr = logging.New(opts)
	})
	return c.logger, c.loggerErr
}

// loadUCS returns the UCS table named by path or, when empty, by the
// config. A nil table means categorization is disabled.
func (c *commandContext) loadUCS(path string) (*ucs.Table, error) {
	if path == "" {
		cfg, err := c.ensureConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.UCS.CSVPath
	}
	if path == "" {
		return nil, nil
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	table, err := ucs.LoadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("load ucs table: %w", err)
	}
	return table, nil
}
