// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

// Package search ranks stored notes against a query fingerprint by cosine
// similarity. The scan is exact and exhaustive: at the target scale (tens of
// thousands of notes) a linear O(n·D) pass beats maintaining an approximate
// index, and it keeps ranking deterministic.
package search

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/neuromem-dev/neuromem/internal/embed"
	"github.com/neuromem-dev/neuromem/internal/metrics"
	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// DefaultLimit is the result count applied when a request leaves the limit
// unset. It seeds the search.default_limit config default.
const DefaultLimit = 5

// MaxLimit caps the per-query result count when no maximum is configured.
const MaxLimit = 20

// DefaultThreshold is the minimum cosine similarity for a note to count as
// relevant. It seeds the search.threshold config default.
const DefaultThreshold = 0.4

// NoteLister is the slice of the note store the engine needs.
type NoteLister interface {
	ListAll(ctx context.Context) ([]*store.Note, error)
}

// Match is one ranked result.
type Match struct {
	Note       *store.Note
	Similarity float64
}

// Results carries the ranked, truncated matches plus scan metadata.
type Results struct {
	Matches []Match
	// TotalFound counts matches at or above the threshold before truncation.
	TotalFound int
	// SkippedMismatched counts notes excluded because their stored
	// fingerprint dimension does not match the query's. A non-zero value
	// after a model change means the collection needs re-embedding.
	SkippedMismatched int
}

// Engine scores notes against query fingerprints.
type Engine struct {
	embedder embed.Embedder
	notes    NoteLister
	maxLimit int
}

// NewEngine creates an Engine. maxLimit caps the per-query result count;
// values <= 0 fall back to MaxLimit.
func NewEngine(embedder embed.Embedder, notes NoteLister, maxLimit int) *Engine {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return &Engine{embedder: embedder, notes: notes, maxLimit: maxLimit}
}

// Search embeds the query and ranks all stored notes against it.
// limit <= 0 is a validation error; limits above the configured maximum are
// clamped. An embedding failure aborts the whole search rather than
// returning partial results.
func (e *Engine) Search(ctx context.Context, query string, limit int, threshold float64) (*Results, error) {
	start := time.Now()

	if limit <= 0 {
		return nil, nmerr.Errorf(nmerr.CodeSearchLimitInvalid, "limit must be positive, got %d", limit)
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}
	if query == "" {
		return nil, nmerr.New(nmerr.CodeSearchLimitInvalid, "query must not be empty")
	}

	queryFP, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	all, err := e.notes.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	results := &Results{}
	var matches []Match
	for _, note := range all {
		if len(note.Fingerprint) != len(queryFP) {
			results.SkippedMismatched++
			continue
		}
		sim := Cosine(note.Fingerprint, queryFP)
		if sim < threshold {
			continue
		}
		matches = append(matches, Match{Note: note, Similarity: sim})
	}

	// Similarity descending; equal scores ordered by ascending id so results
	// are reproducible.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Note.ID < matches[j].Note.ID
	})

	results.TotalFound = len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	results.Matches = matches

	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if results.SkippedMismatched > 0 {
		metrics.SearchMismatchedNotes.Add(float64(results.SkippedMismatched))
	}

	return results, nil
}

// Cosine computes dot(a,b)/(‖a‖·‖b‖) over float64 accumulators. A zero-norm
// vector yields 0 rather than NaN: directionless input is simply unrelated
// to everything.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
