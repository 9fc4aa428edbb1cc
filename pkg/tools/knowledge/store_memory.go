package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/keep/pkg/agent/tools"
	"github.com/entrhq/keep/pkg/knowledge/memory"
)

// StoreMemoryTool persists a named memory entry, overwriting any existing
// entry with the same (scope, name).
type StoreMemoryTool struct {
	store *memory.Store
}

// NewStoreMemoryTool creates a memory storage tool.
func NewStoreMemoryTool(store *memory.Store) *StoreMemoryTool {
	return &StoreMemoryTool{store: store}
}

// Name returns the tool name.
func (t *StoreMemoryTool) Name() string {
	return "store_memory"
}

// Description returns the tool description.
func (t *StoreMemoryTool) Description() string {
	return "Store a named memory entry. Overwrites any existing entry with the same name in the same scope."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *StoreMemoryTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the memory entry",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Content to remember",
			},
			"scope": map[string]interface{}{
				"type":        "string",
				"description": "Memory scope (defaults to 'global')",
			},
		},
		[]string{"name", "content"},
	)
}

// Execute stores the memory entry.
func (t *StoreMemoryTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Name    string   `xml:"name"`
		Content string   `xml:"content"`
		Scope   string   `xml:"scope"`
	}

	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	if input.Name == "" {
		return "", nil, fmt.Errorf("missing required parameter: name")
	}
	if input.Content == "" {
		return "", nil, fmt.Errorf("missing required parameter: content")
	}

	scope := input.Scope
	if scope == "" {
		scope = memory.ScopeGlobal
	}

	if err := t.store.Store(ctx, input.Name, input.Content, scope); err != nil {
		return "", nil, fmt.Errorf("failed to store memory: %w", err)
	}

	metadata := map[string]interface{}{
		"name":  input.Name,
		"scope": scope,
	}
	return fmt.Sprintf("Stored memory %q (scope %s)", input.Name, scope), metadata, nil
}
