package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/keep/pkg/agent/tools"
	"github.com/entrhq/keep/pkg/knowledge/tier2"
)

// WriteDocumentTool stores a generated document in the tier2 store and
// returns its assigned identifier.
type WriteDocumentTool struct {
	store *tier2.Store
}

// NewWriteDocumentTool creates a document writing tool.
func NewWriteDocumentTool(store *tier2.Store) *WriteDocumentTool {
	return &WriteDocumentTool{store: store}
}

// Name returns the tool name.
func (t *WriteDocumentTool) Name() string {
	return "write_document"
}

// Description returns the tool description.
func (t *WriteDocumentTool) Description() string {
	return "Store a generated document in the knowledge store. Returns the document's identifier, " +
		"which is the only handle for reading or removing it later."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *WriteDocumentTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Document content",
			},
			"content_type": map[string]interface{}{
				"type":        "string",
				"description": "Kind of document, e.g. 'summary' or 'transcript' (defaults to 'document')",
			},
		},
		[]string{"content"},
	)
}

// Execute writes the document and reports its identifier.
func (t *WriteDocumentTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName     xml.Name `xml:"arguments"`
		Content     string   `xml:"content"`
		ContentType string   `xml:"content_type"`
	}

	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	id, err := t.store.Write(ctx, input.Content, input.ContentType)
	if err != nil {
		return "", nil, fmt.Errorf("failed to write document: %w", err)
	}

	metadata := map[string]interface{}{
		"identifier":   id,
		"content_type": input.ContentType,
	}
	return fmt.Sprintf("Stored document %q", id), metadata, nil
}
