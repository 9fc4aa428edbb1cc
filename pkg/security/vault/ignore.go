package vault

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// IgnoreFileName is the per-vault ignore file consulted by listing and
// search operations.
const IgnoreFileName = ".keepignore"

// defaultIgnorePatterns are always active regardless of the vault's own
// ignore file. They cover bookkeeping directories no caller should surface.
var defaultIgnorePatterns = []string{
	".git",
	".git/**",
	".keep",
	".keep/**",
}

// ignorePattern is a single compiled ignore rule.
type ignorePattern struct {
	matcher glob.Glob
	raw     string
	dirOnly bool // pattern ended with '/', matches directories only
	negate  bool // pattern started with '!', re-includes matches
}

// IgnoreMatcher matches vault-relative paths against .keepignore glob
// patterns. Later patterns take precedence over earlier ones, and a
// leading '!' negates a pattern, mirroring gitignore semantics.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher loads ignore patterns for the given vault directory.
// A missing ignore file is not an error; the defaults still apply.
func NewIgnoreMatcher(vaultDir string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{}

	for _, raw := range defaultIgnorePatterns {
		if err := m.add(raw); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(filepath.Join(vaultDir, IgnoreFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf("vault: open %s: %w", IgnoreFileName, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := m.add(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", IgnoreFileName, err)
	}

	return m, nil
}

func (m *IgnoreMatcher) add(raw string) error {
	pattern := raw
	negate := false
	if strings.HasPrefix(pattern, "!") {
		negate = true
		pattern = pattern[1:]
	}

	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	compiled, err := glob.Compile(pattern, '/')
	if err != nil {
		return fmt.Errorf("vault: invalid ignore pattern %q: %w", raw, err)
	}

	m.patterns = append(m.patterns, ignorePattern{
		matcher: compiled,
		raw:     raw,
		dirOnly: dirOnly,
		negate:  negate,
	})
	return nil
}

// Match reports whether the vault-relative path should be ignored.
// The last matching pattern wins, so negations can re-include paths
// excluded by an earlier rule.
func (m *IgnoreMatcher) Match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.matcher.Match(relPath) {
			ignored = !p.negate
		}
	}
	return ignored
}
