// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package server

import (
	"context"

	"github.com/neuromem-dev/neuromem/internal/search"
	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/neuromem-dev/neuromem/pkg/health"
)

// NoteService is the note CRUD surface the route handlers depend on.
type NoteService interface {
	Add(ctx context.Context, content, category string) (*store.Note, error)
	Update(ctx context.Context, id int64, content, category string) (*store.Note, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*store.Note, error)
	Stats(ctx context.Context) (*store.Stats, error)
	ReembedAll(ctx context.Context) (int, error)
}

// SearchService ranks stored notes against a query.
type SearchService interface {
	Search(ctx context.Context, query string, limit int, threshold float64) (*search.Results, error)
}

// DriftService reports and resets embedding calibration state.
type DriftService interface {
	Check(ctx context.Context) (*health.DriftReport, error)
	Recalibrate(ctx context.Context) (*health.DriftReport, error)
	LastReport() *health.DriftReport
}

// Services holds dependencies injected into route handlers.
// Each field is an interface so subsystems can be mocked in tests.
type Services struct {
	notes  NoteService
	search SearchService
	drift  DriftService
}

// NewServices creates a Services instance with validation.
func NewServices(notes NoteService, searchSvc SearchService, drift DriftService) (*Services, error) {
	if notes == nil {
		return nil, nmerr.New(nmerr.CodeServerStartFailure, "note service is required")
	}
	if searchSvc == nil {
		return nil, nmerr.New(nmerr.CodeServerStartFailure, "search service is required")
	}
	if drift == nil {
		return nil, nmerr.New(nmerr.CodeServerStartFailure, "drift service is required")
	}
	return &Services{notes: notes, search: searchSvc, drift: drift}, nil
}
