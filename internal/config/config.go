// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

// Package config loads and validates the neuromem configuration.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/neuromem-dev/neuromem/internal/drift"
	"github.com/neuromem-dev/neuromem/internal/search"
	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level neuromem configuration.
type Config struct {
	DataDir     string            `mapstructure:"data_dir"`
	Server      ServerConfig      `mapstructure:"server"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Search      SearchConfig      `mapstructure:"search"`
	Notes       NotesConfig       `mapstructure:"notes"`
}

// ServerConfig controls how the HTTP server listens and authenticates.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
	APIKey string `mapstructure:"api_key"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
}

// CalibrationConfig controls embedding drift detection.
type CalibrationConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// SearchConfig controls result limits and the similarity cutoff.
type SearchConfig struct {
	DefaultLimit int     `mapstructure:"default_limit"`
	MaxLimit     int     `mapstructure:"max_limit"`
	Threshold    float64 `mapstructure:"threshold"`
}

// NotesConfig bounds note content.
type NotesConfig struct {
	MaxContentLength int `mapstructure:"max_content_length"`
}

// Load reads configuration from the given path with environment variable
// overrides (prefix NEUROMEM_). When path is empty, config files are
// discovered in the working directory, ~/.config/neuromem, and /etc/neuromem;
// a missing file is not an error and defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nmerr.Errorf(nmerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("neuromem")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/neuromem")
		v.AddConfigPath("/etc/neuromem")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nmerr.Errorf(nmerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// SetDefaults installs the default value for every config key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("server.listen", "127.0.0.1:8787")
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("calibration.threshold", drift.DefaultThreshold)
	v.SetDefault("search.default_limit", search.DefaultLimit)
	v.SetDefault("search.max_limit", search.MaxLimit)
	v.SetDefault("search.threshold", search.DefaultThreshold)
	v.SetDefault("notes.max_content_length", store.DefaultMaxContentLength)
}

// SetupEnv binds environment variables with the NEUROMEM_ prefix, mapping
// dots in config keys to underscores.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("NEUROMEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateCalibration()...)
	errs = append(errs, c.validateSearch()...)
	errs = append(errs, c.validateNotes()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	host, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}
	_ = host // host can be empty (e.g., ":8787"), which is valid

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q",
			portStr,
		))
	} else if port < 1 || port > 65535 {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d",
			port,
		))
	}

	return errs
}

func (c *Config) validateEmbedding() []error {
	var errs []error

	validProviders := map[string]bool{"openai": true, "google": true}
	if !validProviders[c.Embedding.Provider] {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: embedding.provider must be one of [openai, google], got %q",
			c.Embedding.Provider,
		))
	}

	if c.Embedding.Model == "" {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue, "config: embedding.model must not be empty"))
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: embedding.dimensions must be greater than 0, got %d",
			c.Embedding.Dimensions,
		))
	}

	return errs
}

func (c *Config) validateCalibration() []error {
	var errs []error

	if c.Calibration.Threshold <= 0 || c.Calibration.Threshold > 1 {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: calibration.threshold must be in (0, 1], got %g",
			c.Calibration.Threshold,
		))
	}

	return errs
}

func (c *Config) validateSearch() []error {
	var errs []error

	if c.Search.DefaultLimit <= 0 {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: search.default_limit must be greater than 0, got %d",
			c.Search.DefaultLimit,
		))
	}

	if c.Search.MaxLimit <= 0 {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: search.max_limit must be greater than 0, got %d",
			c.Search.MaxLimit,
		))
	}

	if c.Search.DefaultLimit > 0 && c.Search.MaxLimit > 0 && c.Search.DefaultLimit > c.Search.MaxLimit {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: search.default_limit (%d) must not exceed search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit,
		))
	}

	if c.Search.Threshold < -1 || c.Search.Threshold > 1 {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: search.threshold must be in [-1, 1], got %g",
			c.Search.Threshold,
		))
	}

	return errs
}

func (c *Config) validateNotes() []error {
	var errs []error

	if c.Notes.MaxContentLength <= 0 {
		errs = append(errs, nmerr.Errorf(nmerr.CodeConfigValidateInvalidValue,
			"config: notes.max_content_length must be greater than 0, got %d",
			c.Notes.MaxContentLength,
		))
	}

	return errs
}
