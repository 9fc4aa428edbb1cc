package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/keep/pkg/agent/tools"
	"github.com/entrhq/keep/pkg/knowledge/tier2"
)

// ReadDocumentTool retrieves a tier2 document by identifier.
type ReadDocumentTool struct {
	store *tier2.Store
}

// NewReadDocumentTool creates a document reading tool.
func NewReadDocumentTool(store *tier2.Store) *ReadDocumentTool {
	return &ReadDocumentTool{store: store}
}

// Name returns the tool name.
func (t *ReadDocumentTool) Name() string {
	return "read_document"
}

// Description returns the tool description.
func (t *ReadDocumentTool) Description() string {
	return "Read a stored document by its identifier."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *ReadDocumentTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"identifier": map[string]interface{}{
				"type":        "string",
				"description": "Identifier returned when the document was written",
			},
		},
		[]string{"identifier"},
	)
}

// Execute reads the document. An unknown identifier is not an error; the
// result says no document was found.
func (t *ReadDocumentTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName    xml.Name `xml:"arguments"`
		Identifier string   `xml:"identifier"`
	}

	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	if input.Identifier == "" {
		return "", nil, fmt.Errorf("missing required parameter: identifier")
	}

	doc, found, err := t.store.Read(ctx, input.Identifier)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read document: %w", err)
	}
	if !found {
		return fmt.Sprintf("No document found for identifier %q.", input.Identifier),
			map[string]interface{}{"found": false}, nil
	}

	metadata := map[string]interface{}{
		"found":        true,
		"identifier":   doc.ID,
		"content_type": doc.ContentType,
		"created_at":   doc.CreatedAt,
	}
	return doc.Content, metadata, nil
}
