// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// Compile-time interface check.
var _ store.NoteStore = (*NoteStore)(nil)

// NoteStore implements store.NoteStore backed by SQLite.
type NoteStore struct {
	db *sql.DB
}

// NewNoteStore opens (or creates) a SQLite database at dbPath and initialises
// the notes table. AUTOINCREMENT keeps ids monotone: a deleted id is never
// handed out again.
func NewNoteStore(dbPath string) (*NoteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrateNotes(db); err != nil {
		_ = db.Close()
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "migrating notes table: %w", err)
	}

	return &NoteStore{db: db}, nil
}

func migrateNotes(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS notes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	content     TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT 'general',
	fingerprint BLOB NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *NoteStore) Close() error {
	return s.db.Close()
}

// Add inserts a note and returns the assigned id.
func (s *NoteStore) Add(ctx context.Context, note *store.Note) (int64, error) {
	const q = `INSERT INTO notes (content, category, fingerprint, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`

	category := note.Category
	if category == "" {
		category = store.DefaultCategory
	}

	res, err := s.db.ExecContext(ctx, q,
		note.Content,
		category,
		store.EncodeFingerprint(note.Fingerprint),
		formatTime(note.CreatedAt),
		formatTime(note.UpdatedAt),
	)
	if err != nil {
		return 0, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "inserting note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "reading inserted note id: %w", err)
	}
	return id, nil
}

// Get returns the note with the given id.
func (s *NoteStore) Get(ctx context.Context, id int64) (*store.Note, error) {
	const q = `SELECT id, content, category, fingerprint, created_at, updated_at
FROM notes WHERE id = ?`

	note, err := scanNote(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nmerr.Errorf(nmerr.CodeNoteNotFound, "note %d not found", id)
		}
		return nil, err
	}
	return note, nil
}

// Update replaces content, category, fingerprint, and updated_at in a single
// statement, so a concurrent reader sees the old row or the new row in full.
func (s *NoteStore) Update(ctx context.Context, note *store.Note) error {
	const q = `UPDATE notes SET content = ?, category = ?, fingerprint = ?, updated_at = ?
WHERE id = ?`

	res, err := s.db.ExecContext(ctx, q,
		note.Content,
		note.Category,
		store.EncodeFingerprint(note.Fingerprint),
		formatTime(note.UpdatedAt),
		note.ID,
	)
	if err != nil {
		return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "updating note %d: %w", note.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "reading update result: %w", err)
	}
	if affected == 0 {
		return nmerr.Errorf(nmerr.CodeNoteNotFound, "note %d not found", note.ID)
	}
	return nil
}

// Delete permanently removes the note.
func (s *NoteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "deleting note %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "reading delete result: %w", err)
	}
	if affected == 0 {
		return nmerr.Errorf(nmerr.CodeNoteNotFound, "note %d not found", id)
	}
	return nil
}

// ListAll returns a snapshot of every note with its fingerprint decoded.
func (s *NoteStore) ListAll(ctx context.Context) ([]*store.Note, error) {
	const q = `SELECT id, content, category, fingerprint, created_at, updated_at FROM notes`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "listing notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []*store.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "iterating notes: %w", err)
	}

	return notes, nil
}

// Stats aggregates note counts and creation-time bounds.
func (s *NoteStore) Stats(ctx context.Context) (*store.Stats, error) {
	stats := &store.Stats{PerCategory: map[string]int64{}}

	const totalQ = `SELECT COUNT(*), COALESCE(MIN(created_at), ''), COALESCE(MAX(created_at), '') FROM notes`
	var oldest, newest string
	if err := s.db.QueryRowContext(ctx, totalQ).Scan(&stats.TotalNotes, &oldest, &newest); err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "counting notes: %w", err)
	}
	stats.OldestCreatedAt = parseTime(oldest)
	stats.NewestCreatedAt = parseTime(newest)

	const catQ = `SELECT category, COUNT(*) FROM notes GROUP BY category`
	rows, err := s.db.QueryContext(ctx, catQ)
	if err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "counting notes per category: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "scanning category count: %w", err)
		}
		stats.PerCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "iterating category counts: %w", err)
	}

	return stats, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanNote.
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*store.Note, error) {
	var note store.Note
	var blob []byte
	var created, updated string

	if err := row.Scan(&note.ID, &note.Content, &note.Category, &blob, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "scanning note: %w", err)
	}

	fingerprint, err := store.DecodeFingerprint(blob)
	if err != nil {
		return nil, nmerr.Wrapf(err, nmerr.CodeStoreEncodingInvalid, "decoding fingerprint for note %d", note.ID)
	}

	note.Fingerprint = fingerprint
	note.CreatedAt = parseTime(created)
	note.UpdatedAt = parseTime(updated)
	return &note, nil
}

// formatTime serialises a time.Time to RFC3339 with nanosecond precision.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserialises a time string stored in the database.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
