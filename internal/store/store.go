// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package store

import "context"

// NoteStore is durable CRUD over notes. Implementations must persist every
// mutation before returning and must never expose a partially written note.
type NoteStore interface {
	// Add persists a new note and returns the assigned id. IDs are assigned
	// monotonically and never reused after deletion.
	Add(ctx context.Context, note *Note) (int64, error)
	// Get returns the note or a not_found error.
	Get(ctx context.Context, id int64) (*Note, error)
	// Update replaces content, category, fingerprint, and updated_at in one
	// atomic write. Returns a not_found error for unknown ids.
	Update(ctx context.Context, note *Note) error
	// Delete permanently removes the note. No tombstones.
	Delete(ctx context.Context, id int64) error
	// ListAll returns a snapshot of all notes with fingerprints decoded.
	// Ordering is not specified.
	ListAll(ctx context.Context) ([]*Note, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// CalibrationStore persists the probe-phrase snapshot used for drift checks.
type CalibrationStore interface {
	// LoadAll returns every calibration record, or an empty slice when no
	// snapshot has been captured yet.
	LoadAll(ctx context.Context) ([]*CalibrationRecord, error)
	// ReplaceAll atomically swaps the entire snapshot.
	ReplaceAll(ctx context.Context, records []*CalibrationRecord) error
	Close() error
}
