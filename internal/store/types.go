// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package store

import (
	"time"
	"unicode/utf8"

	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// DefaultCategory is assigned when a note is created without a category.
const DefaultCategory = "general"

// DefaultMaxContentLength bounds note content in characters (runes, not
// bytes) when no limit is configured.
const DefaultMaxContentLength = 10000

// Note is a persisted record: text content plus the fingerprint computed from
// exactly that content. The two are only ever written together.
type Note struct {
	ID          int64
	Content     string
	Category    string
	Fingerprint []float32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateContent checks the note-content bounds shared by add and update.
// maxLen <= 0 falls back to DefaultMaxContentLength. The caller supplies the
// code so the failure names the operation that rejected the content.
func ValidateContent(content string, maxLen int, code nmerr.Code) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxContentLength
	}
	if content == "" {
		return nmerr.New(code, "note: content must not be empty")
	}
	if n := utf8.RuneCountInString(content); n > maxLen {
		return nmerr.Errorf(code,
			"note: content length %d exceeds maximum %d", n, maxLen)
	}
	return nil
}

// CalibrationRecord is one probe phrase's captured fingerprint. All records
// of a single capture share a SnapshotID.
type CalibrationRecord struct {
	Phrase      string
	Fingerprint []float32
	SnapshotID  string
	CapturedAt  time.Time
}

// Stats summarises the note collection.
type Stats struct {
	TotalNotes      int64
	PerCategory     map[string]int64
	OldestCreatedAt time.Time
	NewestCreatedAt time.Time
}
