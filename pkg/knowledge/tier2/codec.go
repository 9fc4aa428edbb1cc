package tier2

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// parseDocument deserializes a raw document byte slice into a Document.
func parseDocument(raw []byte) (*Document, error) {
	s := string(raw)
	if !strings.HasPrefix(s, frontMatterDelimiter) {
		return nil, fmt.Errorf("tier2: missing front-matter delimiter")
	}
	rest := s[len(frontMatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontMatterDelimiter)
	if idx == -1 {
		return nil, fmt.Errorf("tier2: unclosed front-matter block")
	}
	yamlBlock := rest[:idx]
	// Drop the closing delimiter plus up to two newlines when the body is
	// separated by a blank line.
	bodyRaw := rest[idx+len("\n"+frontMatterDelimiter):]
	body := bodyRaw
	if strings.HasPrefix(bodyRaw, "\n\n") {
		body = bodyRaw[2:]
	} else if strings.HasPrefix(bodyRaw, "\n") {
		body = bodyRaw[1:]
	}

	var meta docMeta
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return nil, fmt.Errorf("tier2: front-matter parse error: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &Document{
		ID:          meta.ID,
		Content:     body,
		ContentType: meta.ContentType,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

// serializeDocument renders a Document to its on-disk byte representation.
func serializeDocument(doc *Document) ([]byte, error) {
	meta := docMeta{
		ID:          doc.ID,
		ContentType: doc.ContentType,
		CreatedAt:   doc.CreatedAt,
	}
	yamlBytes, err := yaml.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("tier2: serialize error: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(yamlBytes)
	sb.WriteString(frontMatterDelimiter + "\n\n")
	sb.WriteString(doc.Content)
	return []byte(sb.String()), nil
}
