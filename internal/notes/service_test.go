// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package notes_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/neuromem-dev/neuromem/internal/notes"
	"github.com/neuromem-dev/neuromem/internal/store"
	"github.com/neuromem-dev/neuromem/internal/store/sqlite"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns a fixed vector per text, or a fixed error.
type stubEmbedder struct {
	dim     int
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	vec := make([]float32, s.dim)
	vec[0] = 1
	return vec, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dim }

func newTestService(t *testing.T, embedder *stubEmbedder) (*notes.Service, store.NoteStore) {
	t.Helper()
	dir, err := os.MkdirTemp("", "neuromem-notes-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	ns, err := sqlite.NewNoteStore(filepath.Join(dir, "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ns.Close() })

	return notes.NewService(embedder, ns, 0), ns
}

func TestService_AddPersistsFreshFingerprint(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dim: 3, vectors: map[string][]float32{
		"hello world": {0.1, 0.2, 0.3},
	}}
	svc, ns := newTestService(t, embedder)

	note, err := svc.Add(ctx, "hello world", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), note.ID)
	assert.Equal(t, store.DefaultCategory, note.Category)

	// Round trip: stored fingerprint equals the capability's direct output.
	got, err := ns.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Fingerprint)
	assert.Equal(t, "hello world", got.Content)
}

func TestService_AddValidation(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dim: 3}
	svc, ns := newTestService(t, embedder)

	_, err := svc.Add(ctx, "", "general")
	require.Error(t, err)
	assert.True(t, nmerr.IsInvalidInput(err))
	// Validation fails before the capability is ever invoked.
	assert.Zero(t, embedder.calls)

	stats, err := ns.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalNotes)
}

func TestService_ConfiguredContentBoundIsEnforced(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dim: 3}
	dir, err := os.MkdirTemp("", "neuromem-notes-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	ns, err := sqlite.NewNoteStore(filepath.Join(dir, "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ns.Close() })

	svc := notes.NewService(embedder, ns, 10)

	_, err = svc.Add(ctx, "this content is well past ten characters", "general")
	require.Error(t, err)
	assert.True(t, nmerr.IsInvalidInput(err))
	assert.Zero(t, embedder.calls)

	stats, err := ns.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalNotes, "over-limit note must never reach the store")

	// Within the configured bound the note goes through.
	note, err := svc.Add(ctx, "short", "general")
	require.NoError(t, err)

	// Update enforces the same bound and names the update operation.
	_, err = svc.Update(ctx, note.ID, "this content is well past ten characters", "")
	require.Error(t, err)
	assert.True(t, nmerr.HasCode(err, nmerr.CodeNoteUpdateInvalidInput))
}

func TestService_AddEmbeddingFailureIsFailClosed(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dim: 3, err: nmerr.New(nmerr.CodeEmbedRequestFailure, "backend down")}
	svc, ns := newTestService(t, embedder)

	_, err := svc.Add(ctx, "doomed note", "general")
	require.Error(t, err)
	assert.True(t, nmerr.IsEmbeddingFailure(err))

	stats, err := ns.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalNotes, "no partial write on embedding failure")
}

func TestService_UpdateAlwaysReembeds(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dim: 3, vectors: map[string][]float32{
		"old text": {1, 0, 0},
		"new text": {0, 1, 0},
	}}
	svc, _ := newTestService(t, embedder)

	note, err := svc.Add(ctx, "old text", "work")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, note.ID, "new text", "")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, updated.Fingerprint)
	assert.Equal(t, "work", updated.Category, "empty category keeps the existing one")

	got, err := svc.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, got.Fingerprint)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestService_UpdateNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &stubEmbedder{dim: 3})

	_, err := svc.Update(ctx, 42, "content", "")
	require.Error(t, err)
	assert.True(t, nmerr.IsNotFound(err))
}

func TestService_UpdateEmbeddingFailureLeavesNoteIntact(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dim: 3, vectors: map[string][]float32{
		"original": {1, 0, 0},
	}}
	svc, _ := newTestService(t, embedder)

	note, err := svc.Add(ctx, "original", "general")
	require.NoError(t, err)

	embedder.err = nmerr.New(nmerr.CodeEmbedRequestFailure, "backend down")
	_, err = svc.Update(ctx, note.ID, "changed", "")
	require.Error(t, err)

	got, err := svc.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
	assert.Equal(t, []float32{1, 0, 0}, got.Fingerprint)
}

func TestService_DeleteNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &stubEmbedder{dim: 3})

	err := svc.Delete(ctx, 1)
	require.Error(t, err)
	assert.True(t, nmerr.IsNotFound(err))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalNotes)
}

func TestService_ReembedAll(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{dim: 3, vectors: map[string][]float32{
		"one": {1, 0, 0},
		"two": {0, 1, 0},
	}}
	svc, _ := newTestService(t, embedder)

	n1, err := svc.Add(ctx, "one", "a")
	require.NoError(t, err)
	n2, err := svc.Add(ctx, "two", "b")
	require.NoError(t, err)

	// The model "changed": same texts now map elsewhere.
	embedder.vectors["one"] = []float32{0, 0, 1}
	embedder.vectors["two"] = []float32{0.5, 0.5, 0}

	count, err := svc.ReembedAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got1, err := svc.Get(ctx, n1.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, got1.Fingerprint)

	got2, err := svc.Get(ctx, n2.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5, 0}, got2.Fingerprint)
}
