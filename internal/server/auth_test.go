// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neuromem-dev/neuromem/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedServer(t *testing.T, apiKey string) *server.Server {
	t.Helper()
	srv, err := server.New(server.Config{
		ListenAddr:         "127.0.0.1:0",
		APIKey:             apiKey,
		SearchDefaultLimit: 5,
		SearchThreshold:    0.4,
	})
	require.NoError(t, err)

	svc, err := server.NewServices(&mockNoteService{}, &mockSearchService{}, &mockDriftService{})
	require.NoError(t, err)
	srv.RegisterServices(svc)
	return srv
}

func doAuthed(srv *server.Server, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestAuth_MissingKeyRejected(t *testing.T) {
	srv := newAuthedServer(t, "s3cret")

	w := doAuthed(srv, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or missing API key")
}

func TestAuth_WrongKeyRejected(t *testing.T) {
	srv := newAuthedServer(t, "s3cret")

	w := doAuthed(srv, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_BearerAccepted(t *testing.T) {
	srv := newAuthedServer(t, "s3cret")

	w := doAuthed(srv, "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_APIKeyHeaderAccepted(t *testing.T) {
	srv := newAuthedServer(t, "s3cret")

	w := doAuthed(srv, "X-API-Key", "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_HealthAndMetricsStayOpen(t *testing.T) {
	srv := newAuthedServer(t, "s3cret")

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestAuth_EmptyKeyDisablesAuth(t *testing.T) {
	srv := newAuthedServer(t, "")

	w := doAuthed(srv, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
