// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package embed

import (
	"context"

	"google.golang.org/genai"

	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// Compile-time interface check.
var _ Embedder = (*Google)(nil)

// Google implements Embedder using the Gemini embedding API.
type Google struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewGoogle creates a Gemini embedding backend. Returns an error if the API
// key is missing.
func NewGoogle(cfg Config) (*Google, error) {
	if cfg.APIKey == "" {
		return nil, nmerr.New(nmerr.CodeEmbedInputInvalid, "google: missing api_key in config",
			nmerr.FieldBackend("google"))
	}
	if cfg.Dimensions <= 0 {
		return nil, nmerr.Errorf(nmerr.CodeEmbedInputInvalid,
			"google: dimensions must be > 0, got %d", cfg.Dimensions)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, nmerr.Wrapf(err, nmerr.CodeEmbedRequestFailure, "google: creating client")
	}

	return &Google{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Dimensions returns the configured output dimension.
func (g *Google) Dimensions() int { return g.dimensions }

// Embed requests a single embedding from the Gemini API.
func (g *Google) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, nmerr.New(nmerr.CodeEmbedInputInvalid, "google: text must not be empty")
	}

	dim := int32(g.dimensions)
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, nmerr.Wrapf(err, nmerr.CodeEmbedRequestFailure, "google: embedding request")
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, nmerr.New(nmerr.CodeEmbedResponseInvalid, "google: empty embedding response")
	}

	return checkDimensions(resp.Embeddings[0].Values, g.dimensions, "google")
}
