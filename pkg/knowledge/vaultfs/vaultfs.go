// Package vaultfs performs file operations against the vault directory
// tree. Every path is validated by the vault guard before any filesystem
// access, so traversal attempts never reach the OS.
package vaultfs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/keep/pkg/security/vault"
)

// ErrNotFound is returned when the target vault file does not exist.
// Unlike tier2 and memory, vault deletion targets an explicitly named file,
// so absence is a hard error for the caller.
var ErrNotFound = errors.New("vaultfs: file not found")

// Store deletes vault files after boundary validation.
type Store struct {
	guard *vault.Guard
}

// NewStore creates a vault file store backed by the given guard.
func NewStore(guard *vault.Guard) *Store {
	return &Store{guard: guard}
}

// Delete removes the vault file at relPath. The path is validated against
// the vault boundary first; validation failure (including ErrPathEscape)
// is returned before any existence check runs.
func (s *Store) Delete(_ context.Context, relPath string) error {
	absPath, err := s.guard.ValidatePath(relPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, relPath)
	}
	if err != nil {
		return fmt.Errorf("vaultfs: stat %s: %w", relPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("vaultfs: %s is a directory, not a file", relPath)
	}

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("vaultfs: delete %s: %w", relPath, err)
	}
	return nil
}

// Exists reports whether the vault file at relPath exists. The path is
// boundary-validated first.
func (s *Store) Exists(_ context.Context, relPath string) (bool, error) {
	absPath, err := s.guard.ValidatePath(relPath)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("vaultfs: stat %s: %w", relPath, err)
	}
	return true, nil
}
