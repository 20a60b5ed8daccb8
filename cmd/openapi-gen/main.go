// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neuromem-dev/neuromem/internal/search"
	"github.com/neuromem-dev/neuromem/internal/server"
	"github.com/neuromem-dev/neuromem/internal/store"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/neuromem-dev/neuromem/pkg/health"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations.
func generateSpec() ([]byte, error) {
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "creating server")
	}

	// Use no-op service stubs so all routes are registered for schema
	// discovery. Handlers are never invoked during spec generation.
	svc, err := server.NewServices(&stubNotes{}, &stubSearch{}, &stubDrift{})
	if err != nil {
		return nil, nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "creating services")
	}
	srv.RegisterServices(svc)

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// No-op service stubs for spec generation. Methods are never called.

type stubNotes struct{}

func (s *stubNotes) Add(context.Context, string, string) (*store.Note, error) { return nil, nil }
func (s *stubNotes) Update(context.Context, int64, string, string) (*store.Note, error) {
	return nil, nil
}
func (s *stubNotes) Delete(context.Context, int64) error             { return nil }
func (s *stubNotes) Get(context.Context, int64) (*store.Note, error) { return nil, nil }
func (s *stubNotes) Stats(context.Context) (*store.Stats, error)     { return nil, nil }
func (s *stubNotes) ReembedAll(context.Context) (int, error)         { return 0, nil }

type stubSearch struct{}

func (s *stubSearch) Search(context.Context, string, int, float64) (*search.Results, error) {
	return nil, nil
}

type stubDrift struct{}

func (s *stubDrift) Check(context.Context) (*health.DriftReport, error)       { return nil, nil }
func (s *stubDrift) Recalibrate(context.Context) (*health.DriftReport, error) { return nil, nil }
func (s *stubDrift) LastReport() *health.DriftReport                          { return nil }
