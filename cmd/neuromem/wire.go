// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/neuromem-dev/neuromem/internal/config"
	"github.com/neuromem-dev/neuromem/internal/drift"
	"github.com/neuromem-dev/neuromem/internal/embed"
	"github.com/neuromem-dev/neuromem/internal/metrics"
	"github.com/neuromem-dev/neuromem/internal/notes"
	"github.com/neuromem-dev/neuromem/internal/search"
	"github.com/neuromem-dev/neuromem/internal/secrets"
	"github.com/neuromem-dev/neuromem/internal/server"
	"github.com/neuromem-dev/neuromem/internal/store/sqlite"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// dbFileName is the SQLite database file inside the data directory.
const dbFileName = "neuromem.db"

// App holds all wired subsystems and manages their lifecycle.
type App struct {
	Server *server.Server
	Notes  *notes.Service
	Search *search.Engine
	Drift  *drift.Detector

	noteStore *sqlite.NoteStore
	calStore  *sqlite.CalibrationStore
}

// WireApp creates all subsystems and wires them together.
func WireApp(cfg *config.Config) (*App, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dataDir, dbFileName)

	metrics.Register()

	// Secrets: keyring:// URIs in config resolve to keyring entries.
	keyStore := secrets.NewKeyringStore()
	embedKey, err := secrets.ResolveKeyringURI(keyStore, cfg.Embedding.APIKey)
	if err != nil {
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "resolving embedding API key")
	}
	serverKey, err := secrets.ResolveKeyringURI(keyStore, cfg.Server.APIKey)
	if err != nil {
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "resolving server API key")
	}
	if serverKey == "" {
		slog.Warn("authentication disabled: no server API key configured, API endpoints are unauthenticated")
	}

	// Embedding backend, instrumented with request metrics.
	backend, err := embed.New(embed.Config{
		Backend:    cfg.Embedding.Provider,
		APIKey:     embedKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "creating embedding backend")
	}
	embedder := embed.NewInstrumented(backend, cfg.Embedding.Provider)

	// Stores.
	noteStore, err := sqlite.NewNoteStore(dbPath)
	if err != nil {
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "opening note store")
	}
	calStore, err := sqlite.NewCalibrationStore(dbPath)
	if err != nil {
		_ = noteStore.Close()
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "opening calibration store")
	}

	// Core services.
	noteSvc := notes.NewService(embedder, noteStore, cfg.Notes.MaxContentLength)
	engine := search.NewEngine(embedder, noteStore, cfg.Search.MaxLimit)
	detector, err := drift.NewDetector(embedder, calStore, cfg.Calibration.Threshold)
	if err != nil {
		_ = calStore.Close()
		_ = noteStore.Close()
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "creating drift detector")
	}

	// HTTP server.
	srv, err := server.New(server.Config{
		ListenAddr:         cfg.Server.Listen,
		APIKey:             serverKey,
		SearchDefaultLimit: cfg.Search.DefaultLimit,
		SearchThreshold:    cfg.Search.Threshold,
	})
	if err != nil {
		_ = calStore.Close()
		_ = noteStore.Close()
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "creating server")
	}

	services, err := server.NewServices(noteSvc, engine, detector)
	if err != nil {
		_ = calStore.Close()
		_ = noteStore.Close()
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "creating services")
	}
	srv.RegisterServices(services)

	return &App{
		Server:    srv,
		Notes:     noteSvc,
		Search:    engine,
		Drift:     detector,
		noteStore: noteStore,
		calStore:  calStore,
	}, nil
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	var errs []error
	if a.calStore != nil {
		if err := a.calStore.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.noteStore != nil {
		if err := a.noteStore.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
