// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// apiKeyMiddleware enforces the configured API key on /api/v1 endpoints.
// The key is accepted as "Authorization: Bearer <key>" or "X-API-Key: <key>".
// Digests are compared rather than raw strings so the comparison is
// constant-time regardless of key length. An empty configured key disables
// authentication. /health and /metrics stay open for probes and scrapers.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte(apiKey))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			got := sha256.Sum256([]byte(presentedKey(r)))
			if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401,"detail":"invalid or missing API key"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey extracts the client's API key from the request headers.
func presentedKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}
