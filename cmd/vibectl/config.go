package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultServer = "http://localhost:8375"
	outputTable   = "table"
	outputJSON    = "json"
)

// cliConfig is ~/.config/vibectl/config.toml. Flags override every field.
type cliConfig struct {
	Server string `toml:"server"`
	Token  string `toml:"token"`
	Output string `toml:"output"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{Server: defaultServer, Output: outputTable}
}

func defaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "vibectl", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vibectl", "config.toml"), nil
}

// loadCLIConfig reads path, or the default location when path is empty. A
// missing file yields the defaults.
func loadCLIConfig(path string) (cliConfig, string, error) {
	cfg := defaultCLIConfig()
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, "", err
		}
		path = p
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, path, nil
	case err != nil:
		return cfg, path, fmt.Errorf("open config: %w", err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, path, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, path, cfg.normalize()
}

func (c *cliConfig) normalize() error {
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	if c.Server == "" {
		c.Server = defaultServer
	}
	c.Token = strings.TrimSpace(c.Token)
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	switch c.Output {
	case "":
		c.Output = outputTable
	case outputTable, outputJSON:
	default:
		return fmt.Errorf("output must be %q or %q, got %q", outputTable, outputJSON, c.Output)
	}
	return nil
}

func saveCLIConfig(path string, cfg cliConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// The file may hold a bearer token.
	return os.WriteFile(path, raw, 0o600)
}
