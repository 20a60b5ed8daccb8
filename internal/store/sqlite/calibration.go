// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// Compile-time interface check.
var _ store.CalibrationStore = (*CalibrationStore)(nil)

// CalibrationStore implements store.CalibrationStore backed by SQLite.
// The snapshot is tiny (one row per probe phrase) and read-only between
// explicit recalibrations.
type CalibrationStore struct {
	db *sql.DB
}

// NewCalibrationStore opens (or creates) a SQLite database at dbPath and
// initialises the calibration table.
func NewCalibrationStore(dbPath string) (*CalibrationStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrateCalibration(db); err != nil {
		_ = db.Close()
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "migrating calibration table: %w", err)
	}

	return &CalibrationStore{db: db}, nil
}

func migrateCalibration(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS calibration (
	phrase      TEXT PRIMARY KEY,
	fingerprint BLOB NOT NULL,
	snapshot_id TEXT NOT NULL,
	captured_at TEXT NOT NULL
);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *CalibrationStore) Close() error {
	return s.db.Close()
}

// LoadAll returns every calibration record; empty when never calibrated.
func (s *CalibrationStore) LoadAll(ctx context.Context) ([]*store.CalibrationRecord, error) {
	const q = `SELECT phrase, fingerprint, snapshot_id, captured_at FROM calibration`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "loading calibration records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*store.CalibrationRecord
	for rows.Next() {
		var rec store.CalibrationRecord
		var blob []byte
		var captured string

		if err := rows.Scan(&rec.Phrase, &blob, &rec.SnapshotID, &captured); err != nil {
			return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "scanning calibration record: %w", err)
		}

		fingerprint, err := store.DecodeFingerprint(blob)
		if err != nil {
			return nil, nmerr.Wrapf(err, nmerr.CodeStoreEncodingInvalid,
				"decoding calibration fingerprint for %q", rec.Phrase)
		}

		rec.Fingerprint = fingerprint
		rec.CapturedAt = parseTime(captured)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "iterating calibration records: %w", err)
	}

	return records, nil
}

// ReplaceAll atomically swaps the entire snapshot in one transaction.
func (s *CalibrationStore) ReplaceAll(ctx context.Context, records []*store.CalibrationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM calibration`); err != nil {
		return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "clearing calibration records: %w", err)
	}

	const q = `INSERT INTO calibration (phrase, fingerprint, snapshot_id, captured_at)
VALUES (?, ?, ?, ?)`
	for _, rec := range records {
		_, err := tx.ExecContext(ctx, q,
			rec.Phrase,
			store.EncodeFingerprint(rec.Fingerprint),
			rec.SnapshotID,
			formatTime(rec.CapturedAt),
		)
		if err != nil {
			return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure,
				"inserting calibration record %q: %w", rec.Phrase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nmerr.Errorf(nmerr.CodeStoreDatabaseFailure, "committing calibration snapshot: %w", err)
	}
	return nil
}
