// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neuromem-dev/neuromem/internal/store"
	"github.com/neuromem-dev/neuromem/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords(snapshotID string) []*store.CalibrationRecord {
	now := time.Now().UTC()
	return []*store.CalibrationRecord{
		{Phrase: "alpha", Fingerprint: []float32{1, 0}, SnapshotID: snapshotID, CapturedAt: now},
		{Phrase: "beta", Fingerprint: []float32{0, 1}, SnapshotID: snapshotID, CapturedAt: now},
	}
}

func TestCalibrationStore_EmptyOnFirstRun(t *testing.T) {
	ctx := context.Background()
	cs, err := sqlite.NewCalibrationStore(testDBPath(t, "calibration"))
	require.NoError(t, err)
	defer func() { _ = cs.Close() }()

	records, err := cs.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCalibrationStore_ReplaceAllAndLoad(t *testing.T) {
	ctx := context.Background()
	cs, err := sqlite.NewCalibrationStore(testDBPath(t, "calibration-rw"))
	require.NoError(t, err)
	defer func() { _ = cs.Close() }()

	snapshotID := uuid.NewString()
	require.NoError(t, cs.ReplaceAll(ctx, testRecords(snapshotID)))

	records, err := cs.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byPhrase := map[string]*store.CalibrationRecord{}
	for _, rec := range records {
		byPhrase[rec.Phrase] = rec
		assert.Equal(t, snapshotID, rec.SnapshotID)
		assert.False(t, rec.CapturedAt.IsZero())
	}
	assert.Equal(t, []float32{1, 0}, byPhrase["alpha"].Fingerprint)
	assert.Equal(t, []float32{0, 1}, byPhrase["beta"].Fingerprint)
}

func TestCalibrationStore_ReplaceAllSwapsSnapshot(t *testing.T) {
	ctx := context.Background()
	cs, err := sqlite.NewCalibrationStore(testDBPath(t, "calibration-swap"))
	require.NoError(t, err)
	defer func() { _ = cs.Close() }()

	require.NoError(t, cs.ReplaceAll(ctx, testRecords(uuid.NewString())))

	// A new snapshot with a different phrase set fully replaces the old one.
	next := uuid.NewString()
	replacement := []*store.CalibrationRecord{
		{Phrase: "gamma", Fingerprint: []float32{0.5, 0.5}, SnapshotID: next, CapturedAt: time.Now().UTC()},
	}
	require.NoError(t, cs.ReplaceAll(ctx, replacement))

	records, err := cs.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "gamma", records[0].Phrase)
	assert.Equal(t, next, records[0].SnapshotID)
}
