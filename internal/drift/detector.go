// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

// Package drift certifies on startup that the embedding capability still
// produces output compatible with previously stored fingerprints. It embeds
// a fixed probe-phrase set and compares against the captured snapshot by
// cosine similarity, the same measure the search engine ranks with, so the
// detector watches exactly the property search depends on.
package drift

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/neuromem-dev/neuromem/internal/embed"
	"github.com/neuromem-dev/neuromem/internal/metrics"
	"github.com/neuromem-dev/neuromem/internal/search"
	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/neuromem-dev/neuromem/pkg/health"
)

//go:embed phrases.yaml
var phrasesYAML []byte

// DefaultThreshold is the minimum per-phrase cosine similarity below which
// drift is reported.
const DefaultThreshold = 0.99

type phraseSet struct {
	Version string   `yaml:"version"`
	Phrases []string `yaml:"phrases"`
}

func loadPhraseSet() (phraseSet, error) {
	var ps phraseSet
	if err := yaml.Unmarshal(phrasesYAML, &ps); err != nil {
		return ps, nmerr.Wrapf(err, nmerr.CodeConfigLoadReadFailure, "parsing embedded phrase set")
	}
	if len(ps.Phrases) == 0 {
		return ps, nmerr.New(nmerr.CodeConfigValidateInvalidValue, "embedded phrase set is empty")
	}
	return ps, nil
}

// Detector runs calibration passes and holds the last report for the health
// surface. The report is sticky: a drift_detected status stays visible until
// an explicit recalibration.
type Detector struct {
	embedder  embed.Embedder
	store     store.CalibrationStore
	threshold float64
	phrases   phraseSet
	logger    *slog.Logger

	mu   sync.RWMutex
	last *health.DriftReport
}

// NewDetector creates a Detector. threshold <= 0 falls back to
// DefaultThreshold.
func NewDetector(embedder embed.Embedder, calStore store.CalibrationStore, threshold float64) (*Detector, error) {
	ps, err := loadPhraseSet()
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		embedder:  embedder,
		store:     calStore,
		threshold: threshold,
		phrases:   ps,
		logger:    slog.Default(),
	}, nil
}

// Check runs the startup calibration pass. With no stored snapshot (or a
// snapshot captured from a different phrase set) it captures one and reports
// first_run; otherwise it recomputes every probe fingerprint and reports ok
// or drift_detected. Drift is advisory: Check only returns an error when
// the embedding capability or the store itself fails.
func (d *Detector) Check(ctx context.Context) (*health.DriftReport, error) {
	records, err := d.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[string][]float32, len(records))
	for _, rec := range records {
		stored[rec.Phrase] = rec.Fingerprint
	}

	if len(records) == 0 || !d.samePhraseSet(stored) {
		if len(records) > 0 {
			d.logger.Warn("calibration phrase set changed, recapturing snapshot",
				"stored_phrases", len(records), "current_phrases", len(d.phrases.Phrases))
		}
		if err := d.capture(ctx); err != nil {
			return nil, err
		}
		return d.setReport(health.DriftReport{
			Status:           health.StatusFirstRun,
			MinSimilarity:    1,
			Threshold:        d.threshold,
			PhraseSetVersion: d.phrases.Version,
			CheckedAt:        time.Now().UTC(),
		}), nil
	}

	report := health.DriftReport{
		Status:           health.StatusOK,
		MinSimilarity:    1,
		Threshold:        d.threshold,
		PhraseSetVersion: d.phrases.Version,
		CheckedAt:        time.Now().UTC(),
	}

	for _, phrase := range d.phrases.Phrases {
		current, err := d.embedder.Embed(ctx, phrase)
		if err != nil {
			return nil, nmerr.Wrapf(err, nmerr.CodeEmbedRequestFailure,
				"embedding calibration phrase %q", phrase)
		}

		sim := search.Cosine(current, stored[phrase])
		report.Phrases = append(report.Phrases, health.PhraseSimilarity{
			Phrase:     phrase,
			Similarity: sim,
		})
		if sim < report.MinSimilarity {
			report.MinSimilarity = sim
		}
	}

	if report.MinSimilarity < d.threshold {
		report.Status = health.StatusDriftDetected
		d.logger.Warn("embedding drift detected",
			"min_similarity", report.MinSimilarity,
			"threshold", d.threshold)
	} else {
		d.logger.Info("embedding calibration ok", "min_similarity", report.MinSimilarity)
	}

	return d.setReport(report), nil
}

// Recalibrate overwrites the stored snapshot with freshly computed
// fingerprints. Explicit operator action, also the prescribed step after a
// bulk re-embedding of all notes.
func (d *Detector) Recalibrate(ctx context.Context) (*health.DriftReport, error) {
	if err := d.capture(ctx); err != nil {
		return nil, err
	}
	d.logger.Info("calibration snapshot replaced", "phrases", len(d.phrases.Phrases))
	return d.setReport(health.DriftReport{
		Status:           health.StatusRecalibrated,
		MinSimilarity:    1,
		Threshold:        d.threshold,
		PhraseSetVersion: d.phrases.Version,
		CheckedAt:        time.Now().UTC(),
	}), nil
}

// LastReport returns the most recent report, or nil before the first Check.
func (d *Detector) LastReport() *health.DriftReport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return nil
	}
	cp := *d.last
	return &cp
}

func (d *Detector) samePhraseSet(stored map[string][]float32) bool {
	if len(stored) != len(d.phrases.Phrases) {
		return false
	}
	for _, phrase := range d.phrases.Phrases {
		if _, ok := stored[phrase]; !ok {
			return false
		}
	}
	return true
}

// capture embeds every probe phrase and atomically replaces the snapshot.
// All fingerprints are computed before anything is written: a mid-capture
// embedding failure must not leave a half-replaced snapshot behind.
func (d *Detector) capture(ctx context.Context) error {
	snapshotID := uuid.NewString()
	now := time.Now().UTC()

	records := make([]*store.CalibrationRecord, 0, len(d.phrases.Phrases))
	for _, phrase := range d.phrases.Phrases {
		fingerprint, err := d.embedder.Embed(ctx, phrase)
		if err != nil {
			return nmerr.Wrapf(err, nmerr.CodeEmbedRequestFailure,
				"embedding calibration phrase %q", phrase)
		}
		records = append(records, &store.CalibrationRecord{
			Phrase:      phrase,
			Fingerprint: fingerprint,
			SnapshotID:  snapshotID,
			CapturedAt:  now,
		})
	}

	return d.store.ReplaceAll(ctx, records)
}

func (d *Detector) setReport(report health.DriftReport) *health.DriftReport {
	metrics.CalibrationMinSimilarity.Set(report.MinSimilarity)
	if report.Status == health.StatusDriftDetected {
		metrics.CalibrationDrifted.Set(1)
	} else {
		metrics.CalibrationDrifted.Set(0)
	}

	d.mu.Lock()
	d.last = &report
	d.mu.Unlock()
	cp := report
	return &cp
}
