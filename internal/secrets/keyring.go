// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/zalando/go-keyring"
)

// keysIndexSuffix is appended to the service name to form the key under which
// a JSON index of stored key names is kept. go-keyring cannot enumerate keys,
// so List depends on this index.
const keysIndexSuffix = "::keys-index"

// KeyringStore implements Store using the OS keyring via zalando/go-keyring.
// On macOS it uses Keychain, on Linux secret-service (D-Bus), and on Windows
// the Credential Manager.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

var _ Store = (*KeyringStore)(nil)

func (s *KeyringStore) Store(service, key, value string) error {
	if err := validateServiceKey(service, key, "store"); err != nil {
		return err
	}

	if err := keyring.Set(service, key, value); err != nil {
		return nmerr.Wrapf(err, nmerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return s.addToIndex(service, key)
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if err := validateServiceKey(service, key, "retrieve"); err != nil {
		return "", err
	}

	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nmerr.Errorf(nmerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", nmerr.Wrapf(err, nmerr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := validateServiceKey(service, key, "delete"); err != nil {
		return err
	}

	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nmerr.Errorf(nmerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return nmerr.Wrapf(err, nmerr.CodeSecretDeleteFailure, "deleting secret %s/%s", service, key)
	}
	return s.removeFromIndex(service, key)
}

func (s *KeyringStore) List(service string) ([]string, error) {
	if service == "" {
		return nil, nmerr.New(nmerr.CodeSecretInvalidInput, "secret list: service must not be empty")
	}
	return s.loadIndex(service)
}

// loadIndex reads the JSON key index for a service from the keyring.
func (s *KeyringStore) loadIndex(service string) ([]string, error) {
	raw, err := keyring.Get(service, service+keysIndexSuffix)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, nmerr.Wrapf(err, nmerr.CodeSecretStoreFailure, "loading key index for service %s", service)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, nmerr.Wrapf(err, nmerr.CodeSecretStoreFailure, "decoding key index for service %s", service)
	}
	return keys, nil
}

// saveIndex writes the JSON key index for a service to the keyring.
func (s *KeyringStore) saveIndex(service string, keys []string) error {
	indexKey := service + keysIndexSuffix

	if len(keys) == 0 {
		// Clean up the index entry when empty.
		if delErr := keyring.Delete(service, indexKey); delErr != nil && !errors.Is(delErr, keyring.ErrNotFound) {
			slog.Debug("failed to clean up empty key index", "service", service, "error", delErr)
		}
		return nil
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return nmerr.Wrapf(err, nmerr.CodeSecretStoreFailure, "encoding key index for service %s", service)
	}
	if err := keyring.Set(service, indexKey, string(data)); err != nil {
		return nmerr.Wrapf(err, nmerr.CodeSecretStoreFailure, "saving key index for service %s", service)
	}
	return nil
}

// addToIndex adds a key to the service's key index (idempotent).
func (s *KeyringStore) addToIndex(service, key string) error {
	keys, err := s.loadIndex(service)
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	return s.saveIndex(service, append(keys, key))
}

// removeFromIndex removes a key from the service's key index.
func (s *KeyringStore) removeFromIndex(service, key string) error {
	keys, err := s.loadIndex(service)
	if err != nil {
		return err
	}
	filtered := slices.DeleteFunc(keys, func(k string) bool { return k == key })
	return s.saveIndex(service, filtered)
}

func validateServiceKey(service, key, op string) error {
	if service == "" {
		return nmerr.Errorf(nmerr.CodeSecretInvalidInput, "secret %s: service must not be empty", op)
	}
	if key == "" {
		return nmerr.Errorf(nmerr.CodeSecretInvalidInput, "secret %s: key must not be empty", op)
	}
	return nil
}
