// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

// Package embed defines the embedding capability boundary. The core depends
// only on the Embedder interface; concrete backends (OpenAI, Gemini) live
// behind it and are selected once at startup.
package embed

import (
	"context"

	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// Embedder turns text into a fixed-dimension fingerprint. Implementations
// must be deterministic for a fixed model version and must return vectors of
// exactly Dimensions() length.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Config selects and parameterises a backend.
type Config struct {
	Backend    string // "openai" or "google"
	APIKey     string
	BaseURL    string // optional, openai-compatible endpoints
	Model      string
	Dimensions int
}

// New constructs the configured backend.
func New(cfg Config) (Embedder, error) {
	switch cfg.Backend {
	case "openai":
		return NewOpenAI(cfg)
	case "google":
		return NewGoogle(cfg)
	default:
		return nil, nmerr.Errorf(nmerr.CodeEmbedBackendUnsupported,
			"unsupported embedding backend %q", cfg.Backend)
	}
}

// checkDimensions rejects a backend vector whose length does not match the
// configured dimension. A wrong-size vector must never reach the store.
func checkDimensions(vec []float32, want int, backend string) ([]float32, error) {
	if len(vec) != want {
		return nil, nmerr.Errorf(nmerr.CodeEmbedResponseInvalid,
			"%s returned %d-dimensional vector, expected %d", backend, len(vec), want)
	}
	return vec, nil
}
