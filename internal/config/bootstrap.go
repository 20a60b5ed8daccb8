// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

//go:embed neuromem.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/neuromem/neuromem.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nmerr.Errorf(nmerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "neuromem", "neuromem.yaml"), nil
}

// DefaultDataDir returns ~/.local/share/neuromem.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nmerr.Errorf(nmerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "neuromem"), nil
}

// ResolveDataDir returns the configured data directory, falling back to the
// platform default when empty, and ensures it exists.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		def, err := DefaultDataDir()
		if err != nil {
			return "", err
		}
		dir = def
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", nmerr.Wrapf(err, nmerr.CodeConfigLoadReadFailure, "creating data directory %s", dir)
	}
	return dir, nil
}

// BootstrapConfig writes the default commented config to path if it does not
// already exist. Returns the path written, or empty string if the file already
// existed or an error occurred (non-fatal, logged and skipped).
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return ""
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return "" // already exists
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("created default config", "path", cfgPath)
	return cfgPath
}
