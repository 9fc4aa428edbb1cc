package search

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/keep/pkg/security/vault"
)

// DefaultMaxResults bounds result sets when the caller does not.
const DefaultMaxResults = 50

// errStopWalk aborts the walk once enough matches are collected.
var errStopWalk = errors.New("search: stop walk")

// Match is a single line hit within a vault file.
type Match struct {
	Path string // vault-relative path
	Line int    // 1-based line number
	Text string // matching line, trimmed
}

// Options configures a vault search.
type Options struct {
	// Terms are matched case-insensitively; a line matches when it
	// contains any term.
	Terms []string

	// FilePattern optionally restricts the walk to matching
	// vault-relative paths, e.g. "**/*.md".
	FilePattern string

	// MaxResults caps the result count (DefaultMaxResults when <= 0).
	MaxResults int
}

// Searcher walks vault files looking for term matches. Ignored paths are
// skipped; paths outside the vault are unreachable by construction.
type Searcher struct {
	guard *vault.Guard
}

// NewSearcher creates a searcher over the given vault guard.
func NewSearcher(guard *vault.Guard) *Searcher {
	return &Searcher{guard: guard}
}

// Search scans vault files for the given terms.
func (s *Searcher) Search(ctx context.Context, opts Options) ([]Match, error) {
	if len(opts.Terms) == 0 {
		return nil, fmt.Errorf("search: at least one term is required")
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var pattern glob.Glob
	if opts.FilePattern != "" {
		compiled, err := glob.Compile(opts.FilePattern, '/')
		if err != nil {
			return nil, fmt.Errorf("search: invalid file pattern %q: %w", opts.FilePattern, err)
		}
		pattern = compiled
	}

	terms := make([]string, len(opts.Terms))
	for i, t := range opts.Terms {
		terms[i] = strings.ToLower(t)
	}

	var matches []Match
	root := s.guard.VaultDir()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if s.guard.ShouldIgnore(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if pattern != nil && !pattern.Match(filepath.ToSlash(rel)) {
			return nil
		}

		fileMatches, scanErr := scanFile(path, rel, terms, maxResults-len(matches))
		if scanErr != nil {
			return nil // unreadable or binary-ish, skip
		}
		matches = append(matches, fileMatches...)
		if len(matches) >= maxResults {
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, fmt.Errorf("search: walk vault: %w", err)
	}
	return matches, nil
}

// scanFile collects up to limit matching lines from a single file.
func scanFile(absPath, relPath string, terms []string, limit int) ([]Match, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		lower := strings.ToLower(line)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				out = append(out, Match{
					Path: filepath.ToSlash(relPath),
					Line: lineNo,
					Text: strings.TrimSpace(line),
				})
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
