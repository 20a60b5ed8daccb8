// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/neuromem-dev/neuromem/internal/store"
	"github.com/neuromem-dev/neuromem/internal/store/sqlite"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNote(content, category string, fp []float32) *store.Note {
	now := time.Now().UTC()
	return &store.Note{
		Content:     content,
		Category:    category,
		Fingerprint: fp,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestNoteStore_AddAndGet(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	fp := []float32{0.1, 0.2, 0.3}
	id, err := ns.Add(ctx, newTestNote("first note", "projects", fp))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := ns.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first note", got.Content)
	assert.Equal(t, "projects", got.Category)
	assert.Equal(t, fp, got.Fingerprint)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestNoteStore_AddDefaultsCategory(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-cat"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	id, err := ns.Add(ctx, newTestNote("uncategorised", "", []float32{1}))
	require.NoError(t, err)

	got, err := ns.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultCategory, got.Category)
}

func TestNoteStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-missing"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	_, err = ns.Get(ctx, 99)
	require.Error(t, err)
	assert.True(t, nmerr.IsNotFound(err))
}

func TestNoteStore_Update(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-update"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	id, err := ns.Add(ctx, newTestNote("before", "general", []float32{0.1, 0.2}))
	require.NoError(t, err)

	updated := &store.Note{
		ID:          id,
		Content:     "after",
		Category:    "work",
		Fingerprint: []float32{0.9, 0.8},
		UpdatedAt:   time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, ns.Update(ctx, updated))

	got, err := ns.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Content)
	assert.Equal(t, "work", got.Category)
	assert.Equal(t, []float32{0.9, 0.8}, got.Fingerprint)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestNoteStore_UpdateNotFound(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-update-missing"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	err = ns.Update(ctx, &store.Note{ID: 5, Content: "x", Category: "general", Fingerprint: []float32{1}})
	require.Error(t, err)
	assert.True(t, nmerr.IsNotFound(err))
}

func TestNoteStore_DeleteAndIDNotReused(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-delete"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	id1, err := ns.Add(ctx, newTestNote("doomed", "general", []float32{1}))
	require.NoError(t, err)

	require.NoError(t, ns.Delete(ctx, id1))

	_, err = ns.Get(ctx, id1)
	assert.True(t, nmerr.IsNotFound(err))

	// A new note must not be assigned the deleted id.
	id2, err := ns.Add(ctx, newTestNote("survivor", "general", []float32{1}))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestNoteStore_DeleteNotFound(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-delete-missing"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	err = ns.Delete(ctx, 1)
	require.Error(t, err)
	assert.True(t, nmerr.IsNotFound(err))
}

func TestNoteStore_ListAll(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-list"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	all, err := ns.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = ns.Add(ctx, newTestNote("one", "a", []float32{1, 0}))
	require.NoError(t, err)
	_, err = ns.Add(ctx, newTestNote("two", "b", []float32{0, 1}))
	require.NoError(t, err)

	all, err = ns.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, n := range all {
		assert.Len(t, n.Fingerprint, 2)
	}
}

func TestNoteStore_Stats(t *testing.T) {
	ctx := context.Background()
	ns, err := sqlite.NewNoteStore(testDBPath(t, "notes-stats"))
	require.NoError(t, err)
	defer func() { _ = ns.Close() }()

	stats, err := ns.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalNotes)
	assert.Empty(t, stats.PerCategory)
	assert.True(t, stats.OldestCreatedAt.IsZero())

	_, err = ns.Add(ctx, newTestNote("p1", "projects", []float32{1}))
	require.NoError(t, err)
	_, err = ns.Add(ctx, newTestNote("p2", "projects", []float32{1}))
	require.NoError(t, err)
	_, err = ns.Add(ctx, newTestNote("g1", "general", []float32{1}))
	require.NoError(t, err)

	stats, err = ns.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalNotes)
	assert.Equal(t, int64(2), stats.PerCategory["projects"])
	assert.Equal(t, int64(1), stats.PerCategory["general"])
	assert.False(t, stats.NewestCreatedAt.Before(stats.OldestCreatedAt))
}
