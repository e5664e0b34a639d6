package main

import (
	"log/slog"
	"os"
	"sync"

	"shotsplit/internal/config"
	"shotsplit/internal/logging"
)

// commandContext lazily resolves configuration and logging shared by all
// subcommands.
type commandContext struct {
	configFlag *string

	once   sync.Once
	cfg    *config.Config
	path   string
	logger *slog.Logger
	err    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		cfg, path, _, err := config.Load(*c.configFlag)
		if err != nil {
			c.err = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			Writer: os.Stderr,
		})
		if err != nil {
			c.err = err
			return
		}
		c.cfg = cfg
		c.path = path
		c.logger = logger
	})
	return c.err
}

func (c *commandContext) configValue() (*config.Config, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.cfg, nil
}

func (c *commandContext) loggerValue() (*slog.Logger, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.logger, nil
}
