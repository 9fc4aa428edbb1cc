package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// vaultSectionID is the config section holding vault settings.
const vaultSectionID = "vault"

// VaultSettings are the persisted vault fields.
type VaultSettings struct {
	// Root is the vault root directory.
	Root string

	// Verified records that the user explicitly confirmed Root. An
	// unverified root is never handed to destructive operations.
	Verified bool
}

// Manager owns the loaded configuration. It is constructed explicitly and
// passed by handle wherever configuration is needed; Reload re-reads the
// backing store for tests and long-lived processes.
type Manager struct {
	store Store
	mu    sync.RWMutex
	vault VaultSettings
}

// NewManager creates a manager over the given store and loads the vault
// section from it.
func NewManager(store Store) (*Manager, error) {
	m := &Manager{store: store}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads configuration from the backing store, discarding any
// in-memory state.
func (m *Manager) Reload() error {
	if err := m.store.Load(); err != nil {
		return err
	}

	section, err := m.store.GetSection(vaultSectionID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vault = VaultSettings{}
	if root, ok := section["root"].(string); ok {
		m.vault.Root = root
	}
	if verified, ok := section["verified"].(bool); ok {
		m.vault.Verified = verified
	}
	return nil
}

// SetVaultRoot records the vault root and its verification state and
// persists the change.
func (m *Manager) SetVaultRoot(root string, verified bool) error {
	m.mu.Lock()
	m.vault = VaultSettings{Root: root, Verified: verified}
	m.mu.Unlock()

	if err := m.store.SetSection(vaultSectionID, map[string]interface{}{
		"root":     root,
		"verified": verified,
	}); err != nil {
		return err
	}
	return m.store.Save()
}

// Vault returns a copy of the current vault settings.
func (m *Manager) Vault() VaultSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vault
}

// VerifiedVaultRoot returns the vault root directory, or an error when the
// root is unset, unverified, or missing on disk. Destructive vault
// operations must refuse to run when this returns an error.
func (m *Manager) VerifiedVaultRoot() (string, error) {
	m.mu.RLock()
	settings := m.vault
	m.mu.RUnlock()

	if settings.Root == "" {
		return "", fmt.Errorf("config: vault root is not configured")
	}
	if !settings.Verified {
		return "", fmt.Errorf("config: vault root %q has not been verified", settings.Root)
	}

	absRoot, err := filepath.Abs(settings.Root)
	if err != nil {
		return "", fmt.Errorf("config: failed to resolve vault root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return "", fmt.Errorf("config: vault root %q is not accessible: %w", absRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("config: vault root %q is not a directory", absRoot)
	}

	return absRoot, nil
}
