// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for logistiq.
// This module manages all interactions with the OS keychain/credential store,
// providing a unified interface for storing and retrieving sensitive data such as
// provider tokens and the persisted session blob.
//
// The package supports macOS Keychain, Windows Credential Manager, and the
// freedesktop Secret Service, with an encrypted file backend as the last-resort
// fallback for headless environments.
package keychain

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "logistiq"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAccessToken  = "auth_access_token"
	KeyRefreshToken = "auth_refresh_token"
	KeySessionBlob  = "session_state"
)

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}

	return globalManager, nil
}

// MustGetManager returns the global keychain manager instance.
// Panics if initialization fails. Use only when you're sure initialization will succeed.
func MustGetManager() *Manager {
	manager, err := GetManager()
	if err != nil {
		panic(err)
	}
	return manager
}

// openRing opens the OS keyring, preferring native platform backends and
// falling back to an encrypted file under the user config dir.
func openRing() (keyring.Keyring, error) {
	fileDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		fileDir = filepath.Join(home, ".config", ServiceName, "keyring")
	}

	cfg := keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		FileDir:                  fileDir,
		FilePasswordFunc:         filePassword,
		LibSecretCollectionName:  "login",
		KeychainTrustApplication: true,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return ring, nil
}

// filePassword supplies the passphrase for the encrypted file backend.
// LOGISTIQ_KEYRING_PASSWORD allows non-interactive use (CI, containers).
func filePassword(prompt string) (string, error) {
	if p := os.Getenv("LOGISTIQ_KEYRING_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errors.New("keyring file backend requires LOGISTIQ_KEYRING_PASSWORD")
}

// SaveTokens stores access and refresh tokens in the OS keychain.
// Empty values are skipped so partial updates are possible.
// This method is thread-safe.
func (m *Manager) SaveTokens(accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if accessToken != "" {
		if err := m.ring.Set(keyring.Item{Key: KeyAccessToken, Data: []byte(accessToken)}); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := m.ring.Set(keyring.Item{Key: KeyRefreshToken, Data: []byte(refreshToken)}); err != nil {
			return err
		}
	}
	return nil
}

// LoadAccessToken retrieves the access token from the keychain.
// This method is thread-safe.
func (m *Manager) LoadAccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyAccessToken)
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", errors.New("empty access token")
	}
	return string(it.Data), nil
}

// LoadRefreshToken retrieves the refresh token from the keychain.
// This method is thread-safe.
func (m *Manager) LoadRefreshToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", errors.New("empty refresh token")
	}
	return string(it.Data), nil
}

// SaveSessionBlob stores the serialized session state in the keychain.
// This method is thread-safe.
func (m *Manager) SaveSessionBlob(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ring.Set(keyring.Item{Key: KeySessionBlob, Data: data})
}

// LoadSessionBlob retrieves the serialized session state from the keychain.
// Missing state yields (nil, nil) so callers can treat it as a fresh session.
func (m *Manager) LoadSessionBlob() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeySessionBlob)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return it.Data, nil
}

// ClearSessionBlob removes the stored session state from the keychain.
// This method is thread-safe.
func (m *Manager) ClearSessionBlob() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.ring.Remove(KeySessionBlob)
	return nil
}

// ClearAll removes all logistiq secrets from the keychain.
// This method is thread-safe and should be used with caution.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.ring.Remove(KeyAccessToken)
	_ = m.ring.Remove(KeyRefreshToken)
	_ = m.ring.Remove(KeySessionBlob)
	return nil
}
