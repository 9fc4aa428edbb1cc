// Package config provides persistence for keep's configuration, including
// the vault root and its verification state. Configuration is explicitly
// constructed and passed by handle into the router and stores; there is no
// module-level cache.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store provides persistence for configuration data.
type Store interface {
	// Load loads the configuration from disk
	Load() error

	// Save saves the configuration to disk
	Save() error

	// GetSection retrieves configuration data for a specific section
	GetSection(sectionID string) (map[string]interface{}, error)

	// SetSection stores configuration data for a specific section
	SetSection(sectionID string, data map[string]interface{}) error
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path    string
	data    map[string]map[string]interface{}
	mu      sync.RWMutex
	version string
}

// configFile is the on-disk representation.
type configFile struct {
	Version  string                            `json:"version"`
	Sections map[string]map[string]interface{} `json:"sections"`
}

// NewFileStore creates a new file-based configuration store.
// If path is empty, defaults to ~/.keep/config.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".keep", "config.json")
	}

	store := &FileStore{
		path:    path,
		data:    make(map[string]map[string]interface{}),
		version: "1.0",
	}

	// Try to load existing config, but don't fail if it doesn't exist
	if err := store.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: failed to load config from %s: %w", path, err)
	}

	return store, nil
}

// Load loads the configuration from disk.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet, use empty config
			s.data = make(map[string]map[string]interface{})
			return nil
		}
		return fmt.Errorf("config: failed to read config file: %w", err)
	}

	var file configFile
	if err := json.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("config: failed to parse config file: %w", err)
	}

	if file.Sections == nil {
		file.Sections = make(map[string]map[string]interface{})
	}
	s.data = file.Sections
	if file.Version != "" {
		s.version = file.Version
	}
	return nil
}

// Save saves the configuration to disk atomically.
func (s *FileStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("config: failed to create config directory: %w", err)
	}

	b, err := json.MarshalIndent(configFile{Version: s.version, Sections: s.data}, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("config: failed to write temp config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("config: failed to replace config file: %w", err)
	}
	return nil
}

// GetSection retrieves configuration data for a specific section.
// Returns an empty map if the section does not exist.
func (s *FileStore) GetSection(sectionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	section, ok := s.data[sectionID]
	if !ok {
		return make(map[string]interface{}), nil
	}

	// Return a copy so callers cannot mutate the store directly
	out := make(map[string]interface{}, len(section))
	for k, v := range section {
		out[k] = v
	}
	return out, nil
}

// SetSection stores configuration data for a specific section.
func (s *FileStore) SetSection(sectionID string, data map[string]interface{}) error {
	if sectionID == "" {
		return fmt.Errorf("config: section ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	section := make(map[string]interface{}, len(data))
	for k, v := range data {
		section[k] = v
	}
	s.data[sectionID] = section
	return nil
}

// Path returns the config file path backing this store.
func (s *FileStore) Path() string {
	return s.path
}
