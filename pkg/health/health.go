// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package health

import "time"

// DriftStatus is the outcome of a calibration pass.
type DriftStatus string

const (
	// StatusFirstRun means no calibration snapshot existed and one was captured.
	StatusFirstRun DriftStatus = "first_run"
	// StatusOK means the embedding capability still matches the stored snapshot.
	StatusOK DriftStatus = "ok"
	// StatusDriftDetected means at least one probe phrase fell below the
	// similarity threshold. Advisory: serving continues, search confidence
	// is degraded until recalibration.
	StatusDriftDetected DriftStatus = "drift_detected"
	// StatusRecalibrated means the snapshot was explicitly replaced.
	StatusRecalibrated DriftStatus = "recalibrated"
)

// PhraseSimilarity is one probe phrase's comparison against the stored snapshot.
type PhraseSimilarity struct {
	Phrase     string  `json:"phrase"`
	Similarity float64 `json:"similarity"`
}

// DriftReport is a point-in-time snapshot of the calibration state, safe to
// serialize to JSON for the health and diagnostics surface.
type DriftReport struct {
	Status           DriftStatus        `json:"status"`
	MinSimilarity    float64            `json:"min_similarity"`
	Threshold        float64            `json:"threshold"`
	Phrases          []PhraseSimilarity `json:"phrases,omitempty"`
	PhraseSetVersion string             `json:"phrase_set_version"`
	CheckedAt        time.Time          `json:"checked_at"`
}

// Degraded reports whether search results should be treated with suspicion.
func (r DriftReport) Degraded() bool {
	return r.Status == StatusDriftDetected
}
