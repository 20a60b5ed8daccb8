// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/neuromem-dev/neuromem/pkg/health"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	// Note endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "add-note",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes",
		Summary:     "Add a note",
		Tags:        []string{"notes"},
	}, s.handleAddNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-note",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Get a note",
		Tags:        []string{"notes"},
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-note",
		Method:      http.MethodPut,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Update a note",
		Tags:        []string{"notes"},
	}, s.handleUpdateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-note",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Delete a note",
		Tags:        []string{"notes"},
	}, s.handleDeleteNote)

	// Search endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "search-notes",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search notes by semantic similarity",
		Tags:        []string{"search"},
	}, s.handleSearch)

	// Stats endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Collection statistics",
		Tags:        []string{"system"},
	}, s.handleStats)

	// Calibration endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "get-calibration",
		Method:      http.MethodGet,
		Path:        "/api/v1/calibration",
		Summary:     "Last embedding drift report",
		Tags:        []string{"calibration"},
	}, s.handleGetCalibration)

	huma.Register(s.api, huma.Operation{
		OperationID: "recalibrate",
		Method:      http.MethodPost,
		Path:        "/api/v1/calibration/recalibrate",
		Summary:     "Capture a fresh calibration snapshot",
		Tags:        []string{"calibration"},
	}, s.handleRecalibrate)

	// Re-embed endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "reembed",
		Method:      http.MethodPost,
		Path:        "/api/v1/reembed",
		Summary:     "Re-embed all stored notes",
		Tags:        []string{"calibration"},
	}, s.handleReembed)
}

// --- Request/Response types for huma ---

// NoteView is the JSON representation of a stored note. Fingerprints are an
// internal storage detail and are not exposed.
type NoteView struct {
	ID        int64     `json:"id" doc:"Note identifier"`
	Content   string    `json:"content" doc:"Note text"`
	Category  string    `json:"category" doc:"Note category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func noteView(n *store.Note) NoteView {
	return NoteView{
		ID:        n.ID,
		Content:   n.Content,
		Category:  n.Category,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type addNoteInput struct {
	Body struct {
		Content  string `json:"content" minLength:"1" doc:"Note text"`
		Category string `json:"category,omitempty" doc:"Optional category, defaults to general"`
	}
}
type addNoteOutput struct {
	Status int
	Body   NoteView
}

type noteIDInput struct {
	ID int64 `path:"id" doc:"Note identifier"`
}
type getNoteOutput struct {
	Body NoteView
}

type updateNoteInput struct {
	ID   int64 `path:"id" doc:"Note identifier"`
	Body struct {
		Content  string `json:"content" minLength:"1" doc:"Replacement text"`
		Category string `json:"category,omitempty" doc:"Optional replacement category"`
	}
}
type updateNoteOutput struct {
	Body NoteView
}

type deleteNoteOutput struct {
	Body struct {
		Status string `json:"status" example:"deleted"`
	}
}

type searchInput struct {
	Query     string  `query:"q" required:"true" minLength:"1" doc:"Search query"`
	Limit     int     `query:"limit" maximum:"20" doc:"Maximum results, server default when omitted"`
	Threshold float64 `query:"threshold" maximum:"1" doc:"Minimum cosine similarity, server default when omitted"`
}

// SearchMatch is one ranked search result.
type SearchMatch struct {
	Note       NoteView `json:"note"`
	Similarity float64  `json:"similarity" doc:"Cosine similarity in [-1, 1]"`
}

type searchOutput struct {
	Body struct {
		Matches           []SearchMatch `json:"matches"`
		TotalFound        int           `json:"total_found" doc:"Matches at or above threshold before truncation"`
		SkippedMismatched int           `json:"skipped_mismatched" doc:"Notes excluded by fingerprint dimension mismatch"`
	}
}

type statsOutput struct {
	Body struct {
		TotalNotes      int64            `json:"total_notes"`
		PerCategory     map[string]int64 `json:"per_category"`
		OldestCreatedAt *time.Time       `json:"oldest_created_at,omitempty"`
		NewestCreatedAt *time.Time       `json:"newest_created_at,omitempty"`
	}
}

type calibrationOutput struct {
	Body health.DriftReport
}

type reembedOutput struct {
	Body struct {
		Reembedded int `json:"reembedded" doc:"Number of notes re-embedded"`
	}
}

// --- Handlers ---

// humaError converts a service error into a huma status error using the
// machine-code taxonomy.
func humaError(err error) error {
	return huma.NewError(nmerr.HTTPStatus(err), err.Error())
}

func (s *Server) handleAddNote(ctx context.Context, input *addNoteInput) (*addNoteOutput, error) {
	note, err := s.services.notes.Add(ctx, input.Body.Content, input.Body.Category)
	if err != nil {
		return nil, humaError(err)
	}
	return &addNoteOutput{Status: http.StatusCreated, Body: noteView(note)}, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *noteIDInput) (*getNoteOutput, error) {
	note, err := s.services.notes.Get(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	return &getNoteOutput{Body: noteView(note)}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *updateNoteInput) (*updateNoteOutput, error) {
	note, err := s.services.notes.Update(ctx, input.ID, input.Body.Content, input.Body.Category)
	if err != nil {
		return nil, humaError(err)
	}
	return &updateNoteOutput{Body: noteView(note)}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *noteIDInput) (*deleteNoteOutput, error) {
	if err := s.services.notes.Delete(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	out := &deleteNoteOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

func (s *Server) handleSearch(ctx context.Context, input *searchInput) (*searchOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.SearchDefaultLimit
	}
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = s.cfg.SearchThreshold
	}

	results, err := s.services.search.Search(ctx, input.Query, limit, threshold)
	if err != nil {
		return nil, humaError(err)
	}

	out := &searchOutput{}
	out.Body.Matches = make([]SearchMatch, 0, len(results.Matches))
	for _, m := range results.Matches {
		out.Body.Matches = append(out.Body.Matches, SearchMatch{
			Note:       noteView(m.Note),
			Similarity: m.Similarity,
		})
	}
	out.Body.TotalFound = results.TotalFound
	out.Body.SkippedMismatched = results.SkippedMismatched
	return out, nil
}

func (s *Server) handleStats(ctx context.Context, _ *struct{}) (*statsOutput, error) {
	stats, err := s.services.notes.Stats(ctx)
	if err != nil {
		return nil, humaError(err)
	}

	out := &statsOutput{}
	out.Body.TotalNotes = stats.TotalNotes
	out.Body.PerCategory = stats.PerCategory
	if !stats.OldestCreatedAt.IsZero() {
		oldest := stats.OldestCreatedAt
		out.Body.OldestCreatedAt = &oldest
	}
	if !stats.NewestCreatedAt.IsZero() {
		newest := stats.NewestCreatedAt
		out.Body.NewestCreatedAt = &newest
	}
	return out, nil
}

func (s *Server) handleGetCalibration(ctx context.Context, _ *struct{}) (*calibrationOutput, error) {
	report := s.services.drift.LastReport()
	if report == nil {
		// No check has run yet in this process. Run one now so the endpoint
		// always answers with a real report.
		var err error
		report, err = s.services.drift.Check(ctx)
		if err != nil {
			return nil, humaError(err)
		}
	}
	return &calibrationOutput{Body: *report}, nil
}

func (s *Server) handleRecalibrate(ctx context.Context, _ *struct{}) (*calibrationOutput, error) {
	report, err := s.services.drift.Recalibrate(ctx)
	if err != nil {
		return nil, humaError(err)
	}
	return &calibrationOutput{Body: *report}, nil
}

func (s *Server) handleReembed(ctx context.Context, _ *struct{}) (*reembedOutput, error) {
	count, err := s.services.notes.ReembedAll(ctx)
	if err != nil {
		return nil, humaError(err)
	}
	out := &reembedOutput{}
	out.Body.Reembedded = count
	return out, nil
}
