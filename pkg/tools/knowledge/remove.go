// Package knowledge exposes the knowledge store operations as assistant
// tools: removal, memory storage, tier2 documents, and vault search.
package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/keep/pkg/agent/tools"
	"github.com/entrhq/keep/pkg/knowledge/remove"
)

// RemoveTool deletes a single knowledge entity by identifier or memory name.
type RemoveTool struct {
	router *remove.Router
}

// NewRemoveTool creates a removal tool over the given router.
func NewRemoveTool(router *remove.Router) *RemoveTool {
	return &RemoveTool{router: router}
}

// Name returns the tool name.
func (t *RemoveTool) Name() string {
	return "remove_knowledge"
}

// Description returns the tool description.
func (t *RemoveTool) Description() string {
	return "Remove a single entity from the knowledge store: a vault file (identifier 'vault::<path>'), " +
		"a generated document (identifier '<type>::<uuid>'), or a named memory (via the 'name' parameter). " +
		"Vault and global-memory deletions require confirm=true."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *RemoveTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"identifier": map[string]interface{}{
				"type":        "string",
				"description": "Identifier of the entity to remove (mutually exclusive with 'name')",
			},
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the memory entry to remove (mutually exclusive with 'identifier')",
			},
			"scope": map[string]interface{}{
				"type":        "string",
				"description": "Memory scope for 'name' removals (defaults to 'global')",
			},
			"confirm": map[string]interface{}{
				"type":        "boolean",
				"description": "Set to true to confirm destructive deletions",
			},
		},
		nil,
	)
}

// Execute routes the removal and flattens the result into a message plus
// metadata. Domain failures surface as errors; soft outcomes (not found,
// confirmation required) are successful results.
func (t *RemoveTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName    xml.Name `xml:"arguments"`
		Identifier string   `xml:"identifier"`
		Name       string   `xml:"name"`
		Scope      string   `xml:"scope"`
		Confirm    bool     `xml:"confirm"`
	}

	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	result := t.router.Remove(ctx, remove.Params{
		Identifier: input.Identifier,
		Name:       input.Name,
		Scope:      input.Scope,
		Confirm:    input.Confirm,
	})

	if result.Err != nil {
		return "", nil, fmt.Errorf("removal failed (%s): %s", result.Err.Kind, result.Err.Message)
	}

	metadata := map[string]interface{}{
		"deleted":               result.Deleted,
		"confirmation_required": result.ConfirmationRequired,
	}

	switch {
	case result.ConfirmationRequired:
		return result.Message, metadata, nil
	case result.Deleted:
		return result.Message, metadata, nil
	default:
		metadata["reason"] = result.Reason
		return "Nothing to remove: no matching entry was found.", metadata, nil
	}
}
