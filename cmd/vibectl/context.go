package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"moodmate/internal/apiclient"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	config  string
	server  string
	token   string
	json    bool
	verbose bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     cliConfig
	configPath string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (cliConfig, error) {
	c.configOnce.Do(func() {
		cfg, path, err := loadCLIConfig(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if s := strings.TrimSpace(c.flags.server); s != "" {
			cfg.Server = strings.TrimRight(s, "/")
		}
		if t := strings.TrimSpace(c.flags.token); t != "" {
			cfg.Token = t
		}
		if c.flags.json {
			cfg.Output = outputJSON
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) client() (*apiclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return apiclient.New(cfg.Server, cfg.Token, nil), nil
}

func (c *commandContext) jsonOutput() bool {
	cfg, _ := c.ensureConfig()
	return cfg.Output == outputJSON
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	if !c.flags.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
