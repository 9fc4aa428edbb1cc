// Package vault provides security mechanisms for enforcing vault boundaries
// on file system operations. It prevents path traversal attacks and ensures
// all operations stay within the configured vault root directory.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a resolved path falls outside the vault
// root. Callers must treat it as a hard failure: escapes are never clamped
// back into the vault.
var ErrPathEscape = errors.New("vault: path escapes vault root")

// Guard enforces vault boundary restrictions on file paths.
// It validates that all file operations remain within the vault directory,
// preventing path traversal attacks and unauthorized file access.
type Guard struct {
	vaultDir string         // Absolute, symlink-resolved path to vault root
	ignore   *IgnoreMatcher // Pattern matcher for .keepignore rules
}

// NewGuard creates a new vault guard for the given directory.
// The directory path is converted to an absolute path, cleaned, and symlinks
// are evaluated. It also loads ignore patterns from .keepignore if present.
func NewGuard(vaultDir string) (*Guard, error) {
	if vaultDir == "" {
		return nil, fmt.Errorf("vault: vault directory cannot be empty")
	}

	absPath, err := filepath.Abs(vaultDir)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to resolve vault directory: %w", err)
	}

	// Evaluate any symlinks in the vault path itself so containment checks
	// compare like with like (e.g. /var vs /private/var on macOS).
	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to evaluate vault directory symlinks: %w", err)
	}

	ignore, err := NewIgnoreMatcher(evalPath)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to load ignore patterns: %w", err)
	}

	return &Guard{
		vaultDir: evalPath,
		ignore:   ignore,
	}, nil
}

// ValidatePath checks that relPath, resolved against the vault root, stays
// within the vault boundaries. It returns the resolved absolute path on
// success and ErrPathEscape (wrapped with the offending path) otherwise.
//
// This must run before any existence check or confirmation gate so a
// traversal attempt is rejected unconditionally.
func (g *Guard) ValidatePath(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("vault: path cannot be empty")
	}

	resolved, err := g.ResolvePath(relPath)
	if err != nil {
		return "", err
	}

	if !g.IsWithinVault(resolved) {
		return "", fmt.Errorf("%w: %q resolves outside %q", ErrPathEscape, relPath, g.vaultDir)
	}

	return resolved, nil
}

// ResolvePath converts a vault-relative or absolute path to an absolute path
// within the vault context. It cleans the path and resolves any symbolic
// links, falling back to resolving the nearest existing ancestor when the
// target does not exist yet.
func (g *Guard) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("vault: path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	var absPath string
	if filepath.IsAbs(cleanPath) {
		absPath = cleanPath
	} else {
		absPath = filepath.Join(g.vaultDir, cleanPath)
	}
	absPath = filepath.Clean(absPath)

	return g.resolveSymlinks(absPath), nil
}

// IsWithinVault checks if an absolute path is within the vault boundaries.
// This is the core security check - it ensures a path is either the vault
// root itself or nested under it.
func (g *Guard) IsWithinVault(absPath string) bool {
	evalPath := g.resolveSymlinks(absPath)
	sep := string(filepath.Separator)
	return evalPath == g.vaultDir || strings.HasPrefix(evalPath+sep, g.vaultDir+sep)
}

// resolveSymlinks resolves symlinks in a path, handling non-existent paths
// by recursively resolving parent directories until an existing one is found.
func (g *Guard) resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	// For non-existent paths, collect components and resolve from the
	// nearest existing ancestor.
	var components []string
	currentPath := path
	for {
		if resolved, err := filepath.EvalSymlinks(currentPath); err == nil {
			result := resolved
			for i := len(components) - 1; i >= 0; i-- {
				result = filepath.Join(result, components[i])
			}
			return result
		}

		dir := filepath.Dir(currentPath)
		if dir == currentPath || dir == "." || dir == "/" {
			return filepath.Clean(path)
		}

		components = append(components, filepath.Base(currentPath))
		currentPath = dir
	}
}

// VaultDir returns the absolute path of the vault root directory.
func (g *Guard) VaultDir() string {
	return g.vaultDir
}

// MakeRelative converts an absolute path to a path relative to the vault
// root. Returns an error if the path is not within the vault.
func (g *Guard) MakeRelative(absPath string) (string, error) {
	if !g.IsWithinVault(absPath) {
		return "", fmt.Errorf("vault: path %q is not within vault", absPath)
	}

	relPath, err := filepath.Rel(g.vaultDir, g.resolveSymlinks(absPath))
	if err != nil {
		return "", fmt.Errorf("vault: failed to make path relative: %w", err)
	}

	return relPath, nil
}

// ShouldIgnore checks if a path should be skipped by listing and search
// based on loaded .keepignore patterns. Ignore rules are a visibility
// concern only - they are never consulted by deletion safety checks.
func (g *Guard) ShouldIgnore(path string) bool {
	var absPath string
	if filepath.IsAbs(path) {
		absPath = path
	} else {
		absPath = filepath.Join(g.vaultDir, path)
	}

	relPath, err := g.MakeRelative(absPath)
	if err != nil {
		// Outside the vault; the boundary check catches this elsewhere.
		return false
	}

	isDir := false
	if info, err := os.Lstat(absPath); err == nil {
		isDir = info.IsDir()
	}

	return g.ignore.Match(relPath, isDir)
}
