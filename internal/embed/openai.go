// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package embed

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// Compile-time interface check.
var _ Embedder = (*OpenAI)(nil)

// OpenAI implements Embedder using the OpenAI embeddings API. BaseURL may
// point at any openai-compatible endpoint.
type OpenAI struct {
	client     openaisdk.Client
	model      string
	dimensions int
}

// NewOpenAI creates an OpenAI embedding backend. Returns an error if the API
// key is missing.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, nmerr.New(nmerr.CodeEmbedInputInvalid, "openai: missing api_key in config",
			nmerr.FieldBackend("openai"))
	}
	if cfg.Dimensions <= 0 {
		return nil, nmerr.Errorf(nmerr.CodeEmbedInputInvalid,
			"openai: dimensions must be > 0, got %d", cfg.Dimensions)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client:     openaisdk.NewClient(opts...),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Dimensions returns the configured output dimension.
func (o *OpenAI) Dimensions() int { return o.dimensions }

// Embed requests a single embedding. Failures surface as embedding errors;
// nothing is retried here.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, nmerr.New(nmerr.CodeEmbedInputInvalid, "openai: text must not be empty")
	}

	resp, err := o.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model:          openaisdk.EmbeddingModel(o.model),
		Dimensions:     openaisdk.Int(int64(o.dimensions)),
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, nmerr.Wrapf(err, nmerr.CodeEmbedRequestFailure, "openai: embedding request")
	}
	if len(resp.Data) == 0 {
		return nil, nmerr.New(nmerr.CodeEmbedResponseInvalid, "openai: empty embedding response")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return checkDimensions(vec, o.dimensions, "openai")
}
