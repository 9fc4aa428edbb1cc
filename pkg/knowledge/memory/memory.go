// Package memory provides the named-entry store. Entries are addressed by
// (scope, name); the "global" scope holds shared, harder-to-recover state
// and therefore requires explicit confirmation before deletion.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ScopeGlobal is the shared, high-impact scope. Deleting from it requires
// caller confirmation.
const ScopeGlobal = "global"

var ErrEmptyName = errors.New("memory: name cannot be empty")

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// Entry is a single stored memory.
type Entry struct {
	Scope       string
	Name        string
	Content     string
	StoragePath string
}

// entryMeta holds the YAML front-matter fields persisted with each entry.
type entryMeta struct {
	Name      string    `yaml:"name"`
	Scope     string    `yaml:"scope"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// DeleteOutcome reports what a Delete call did. Exactly one of Deleted or
// ConfirmationRequired is set when Err is nil; an absent entry yields
// neither (soft not-found).
type DeleteOutcome struct {
	Deleted              bool
	ConfirmationRequired bool
	Prompt               string
}

// Store is a local file-system memory store, one directory per scope and
// one Markdown file with YAML front-matter per entry.
type Store struct {
	dir string
}

// NewStore creates a memory store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("memory: init directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// pathFor maps (scope, name) onto the entry's storage path, rejecting names
// and scopes that contain path separators or would traverse out of the
// store directory.
func (s *Store) pathFor(scope, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if scope == "" {
		return "", fmt.Errorf("memory: scope cannot be empty")
	}
	for _, part := range []string{scope, name} {
		if strings.ContainsAny(part, "/\\") {
			return "", fmt.Errorf("memory: invalid key %q (contains path separator)", part)
		}
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return "", fmt.Errorf("memory: abs dir: %w", err)
	}
	resolved := filepath.Join(dir, scope, name+".md")
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("memory: path traversal detected for (%s, %s)", scope, name)
	}
	return resolved, nil
}

// Store persists content under (scope, name), overwriting any prior entry
// with the same key. The write is atomic via a temporary file.
func (s *Store) Store(_ context.Context, name, content, scope string) error {
	path, err := s.pathFor(scope, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("memory: init scope directory: %w", err)
	}

	meta := entryMeta{Name: name, Scope: scope, UpdatedAt: timeNow().UTC()}
	yamlBytes, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("memory: serialize error: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(yamlBytes)
	sb.WriteString("---\n\n")
	sb.WriteString(content)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("memory: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("memory: atomic rename %s: %w", path, err)
	}
	return nil
}

// Get retrieves an entry by (scope, name). An absent entry is not an
// error: it returns found=false.
func (s *Store) Get(_ context.Context, name, scope string) (*Entry, bool, error) {
	path, err := s.pathFor(scope, name)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("memory: read %s: %w", path, err)
	}

	content := string(b)
	if idx := strings.Index(content, "\n---"); strings.HasPrefix(content, "---") && idx != -1 {
		body := content[idx+len("\n---"):]
		if strings.HasPrefix(body, "\n\n") {
			body = body[2:]
		} else if strings.HasPrefix(body, "\n") {
			body = body[1:]
		}
		content = body
	}

	return &Entry{
		Scope:       scope,
		Name:        name,
		Content:     content,
		StoragePath: path,
	}, true, nil
}

// Delete removes the entry addressed by (scope, name).
//
// Global-scope deletions require confirm=true: without it the outcome is
// ConfirmationRequired with a human-readable prompt and no mutation occurs,
// so the call is safe to retry. Absence is reported via the outcome, not
// an error.
func (s *Store) Delete(_ context.Context, name, scope string, confirm bool) (DeleteOutcome, error) {
	path, err := s.pathFor(scope, name)
	if err != nil {
		return DeleteOutcome{}, err
	}

	if scope == ScopeGlobal && !confirm {
		return DeleteOutcome{
			ConfirmationRequired: true,
			Prompt:               fmt.Sprintf("Deleting global memory %q affects all sessions. Pass confirm=true to proceed.", name),
		}, nil
	}

	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return DeleteOutcome{}, nil
	}
	if err != nil {
		return DeleteOutcome{}, fmt.Errorf("memory: delete %s: %w", path, err)
	}
	return DeleteOutcome{Deleted: true}, nil
}

// ListScope returns the names of all entries within a scope, skipping
// non-entry files. An absent scope directory yields an empty list.
func (s *Store) ListScope(_ context.Context, scope string) ([]string, error) {
	if scope == "" || strings.ContainsAny(scope, "/\\") {
		return nil, fmt.Errorf("memory: invalid scope %q", scope)
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, scope))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: list scope %s: %w", scope, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	return names, nil
}
