package tier2

import (
	"fmt"
	"time"
)

// Document is a single tier2 entry. The ID is assigned at write time and is
// immutable for the lifetime of the document.
type Document struct {
	ID          string
	Content     string
	ContentType string
	CreatedAt   time.Time
}

// docMeta holds the YAML front-matter fields persisted with each document.
type docMeta struct {
	ID          string    `yaml:"id"`
	ContentType string    `yaml:"content_type"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// Validate ensures required document metadata fields are populated.
func (m *docMeta) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("tier2: missing ID")
	}
	if m.ContentType == "" {
		return fmt.Errorf("tier2: missing ContentType")
	}
	return nil
}
