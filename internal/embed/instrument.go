// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package embed

import (
	"context"
	"time"

	"github.com/neuromem-dev/neuromem/internal/metrics"
)

// Compile-time interface check.
var _ Embedder = (*Instrumented)(nil)

// Instrumented decorates an Embedder with Prometheus request metrics.
type Instrumented struct {
	inner   Embedder
	backend string
}

// NewInstrumented wraps an Embedder so every call is counted and timed.
func NewInstrumented(inner Embedder, backend string) *Instrumented {
	return &Instrumented{inner: inner, backend: backend}
}

func (e *Instrumented) Dimensions() int { return e.inner.Dimensions() }

func (e *Instrumented) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := e.inner.Embed(ctx, text)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.backend, status).Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.backend).Observe(time.Since(start).Seconds())

	return vec, err
}
