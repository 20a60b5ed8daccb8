// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

// Package notes coordinates the embedding capability and the note store:
// every mutation embeds first and persists second, so no store lock is ever
// held across a slow embedding call and no note is persisted with a
// fingerprint computed from different content.
package notes

import (
	"context"
	"log/slog"
	"time"

	"github.com/neuromem-dev/neuromem/internal/embed"
	"github.com/neuromem-dev/neuromem/internal/metrics"
	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// Service implements the note call surface over an Embedder and a NoteStore.
type Service struct {
	embedder   embed.Embedder
	store      store.NoteStore
	maxContent int
	logger     *slog.Logger
}

// NewService creates a Service. maxContentLength bounds note content in
// runes; values <= 0 fall back to store.DefaultMaxContentLength.
func NewService(embedder embed.Embedder, noteStore store.NoteStore, maxContentLength int) *Service {
	if maxContentLength <= 0 {
		maxContentLength = store.DefaultMaxContentLength
	}
	return &Service{
		embedder:   embedder,
		store:      noteStore,
		maxContent: maxContentLength,
		logger:     slog.Default(),
	}
}

// Add validates, embeds, and persists a new note. A validation or embedding
// failure leaves the store untouched.
func (s *Service) Add(ctx context.Context, content, category string) (*store.Note, error) {
	if err := store.ValidateContent(content, s.maxContent, nmerr.CodeNoteAddInvalidInput); err != nil {
		return nil, err
	}

	fingerprint, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &store.Note{
		Content:     content,
		Category:    category,
		Fingerprint: fingerprint,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.store.Add(ctx, note)
	if err != nil {
		return nil, err
	}
	note.ID = id
	if note.Category == "" {
		note.Category = store.DefaultCategory
	}

	metrics.NotesTotal.Inc()
	s.logger.Debug("note added", "note_id", id, "category", note.Category)
	return note, nil
}

// Update re-embeds the new content and atomically replaces content, category,
// fingerprint, and updated_at. Re-embedding is unconditional: an update that
// kept a stale fingerprint would silently corrupt later searches.
func (s *Service) Update(ctx context.Context, id int64, content, category string) (*store.Note, error) {
	if err := store.ValidateContent(content, s.maxContent, nmerr.CodeNoteUpdateInvalidInput); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = existing.Category
	}

	fingerprint, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	note := &store.Note{
		ID:          id,
		Content:     content,
		Category:    category,
		Fingerprint: fingerprint,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.store.Update(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Debug("note updated", "note_id", id, "category", category)
	return note, nil
}

// Delete permanently removes a note.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.NotesTotal.Dec()
	s.logger.Debug("note deleted", "note_id", id)
	return nil
}

// Get returns a single note.
func (s *Service) Get(ctx context.Context, id int64) (*store.Note, error) {
	return s.store.Get(ctx, id)
}

// Stats summarises the collection.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}

// ReembedAll recomputes every note's fingerprint with the current embedding
// capability. This is the administrative remedy after a model or dimension
// change; the operator is expected to recalibrate afterwards. Notes that fail
// to re-embed are reported but do not stop the pass.
func (s *Service) ReembedAll(ctx context.Context) (int, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var done int
	var errs []error
	for _, note := range all {
		fingerprint, err := s.embedder.Embed(ctx, note.Content)
		if err != nil {
			s.logger.Warn("re-embedding failed", "note_id", note.ID, "error", err)
			errs = append(errs, nmerr.Wrapf(err, nmerr.CodeEmbedRequestFailure,
				"re-embedding note %d", note.ID))
			continue
		}

		note.Fingerprint = fingerprint
		note.UpdatedAt = time.Now().UTC()
		if err := s.store.Update(ctx, note); err != nil {
			errs = append(errs, err)
			continue
		}
		done++
	}

	if len(errs) > 0 {
		return done, nmerr.Join(errs...)
	}
	s.logger.Info("re-embedded all notes", "count", done)
	return done, nil
}

// SyncGauges refreshes the note-count gauge from the store, for startup.
func (s *Service) SyncGauges(ctx context.Context) error {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return err
	}
	metrics.NotesTotal.Set(float64(stats.TotalNotes))
	return nil
}
