package tier2

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrEmptyContent = errors.New("tier2: content cannot be empty")

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// Store is a local file-system document store. Documents live as Markdown
// files with YAML front-matter under a single directory, one file per id.
type Store struct {
	dir string
}

// NewStore creates a tier2 store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("tier2: init directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) pathForID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("tier2: invalid document id (empty)")
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("tier2: invalid document id %q (contains path separator)", id)
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return "", fmt.Errorf("tier2: abs dir: %w", err)
	}
	resolved := filepath.Join(dir, id+".md")
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("tier2: path traversal detected for id %q", id)
	}
	return resolved, nil
}

// Write persists content under a freshly generated id and returns that id.
// It writes atomically via a temporary file. Content must be non-empty;
// writes never fail for valid content short of a filesystem fault.
func (s *Store) Write(_ context.Context, content, contentType string) (string, error) {
	if content == "" {
		return "", ErrEmptyContent
	}
	if contentType == "" {
		contentType = "document"
	}
	doc := &Document{
		ID:          NewDocumentID(contentType),
		Content:     content,
		ContentType: contentType,
		CreatedAt:   timeNow().UTC(),
	}

	b, err := serializeDocument(doc)
	if err != nil {
		return "", err
	}
	path, err := s.pathForID(doc.ID)
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", fmt.Errorf("tier2: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return "", fmt.Errorf("tier2: atomic rename %s: %w", path, err)
	}
	return doc.ID, nil
}

// Read retrieves a document by id. An unknown id is not an error: it
// returns found=false with a nil document.
func (s *Store) Read(_ context.Context, id string) (*Document, bool, error) {
	path, err := s.pathForID(id)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("tier2: read %s: %w", path, err)
	}
	doc, err := parseDocument(b)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Delete removes the document with the given id. Deletion is idempotent:
// an absent document yields deleted=false with nil error, so repeated
// calls after the first succeed without effect.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	path, err := s.pathForID(id)
	if err != nil {
		return false, err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("tier2: delete %s: %w", path, err)
	}
	return true, nil
}

// List returns all valid documents in the store, skipping corrupt or
// unreadable files.
func (s *Store) List(_ context.Context) ([]*Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("tier2: list %s: %w", s.dir, err)
	}
	var out []*Document
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		doc, err := parseDocument(b)
		if err != nil {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}
