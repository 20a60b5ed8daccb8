// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

// Package secrets stores embedding-backend API keys outside the config file.
package secrets

// Store provides secure secret storage operations.
// Implementations may use OS keyrings, encrypted files, or other backends.
type Store interface {
	// Store saves a secret value under the given service and key.
	Store(service, key, value string) error

	// Retrieve fetches the secret value for the given service and key.
	// A missing key yields an error with code secret.not_found.
	Retrieve(service, key string) (string, error)

	// Delete removes the secret for the given service and key.
	// A missing key yields an error with code secret.not_found.
	Delete(service, key string) error

	// List returns the names of keys stored under the given service.
	// Values are never returned.
	List(service string) ([]string, error)
}
