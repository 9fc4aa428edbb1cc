package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/keep/pkg/agent/tools"
	"github.com/entrhq/keep/pkg/knowledge/search"
	"github.com/entrhq/keep/pkg/logging"
)

// SearchVaultTool searches vault files for a free-text query, optionally
// widening it through LLM query expansion first.
type SearchVaultTool struct {
	searcher *search.Searcher
	expander *search.Expander
	logger   *logging.Logger
}

// NewSearchVaultTool creates a vault search tool. expander may be nil, in
// which case only the literal query is matched.
func NewSearchVaultTool(searcher *search.Searcher, expander *search.Expander) *SearchVaultTool {
	logger, _ := logging.NewLogger("search-tool")
	return &SearchVaultTool{searcher: searcher, expander: expander, logger: logger}
}

// Name returns the tool name.
func (t *SearchVaultTool) Name() string {
	return "search_vault"
}

// Description returns the tool description.
func (t *SearchVaultTool) Description() string {
	return "Search vault files for a query. Returns matching lines with their file paths and line numbers. " +
		"An optional glob pattern restricts which files are searched."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *SearchVaultTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Free-text query",
			},
			"file_pattern": map[string]interface{}{
				"type":        "string",
				"description": "Optional glob restricting searched files, e.g. '**/*.md'",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of matching lines to return",
			},
		},
		[]string{"query"},
	)
}

// Execute expands the query when an expander is available, then runs the
// search. Expansion failures degrade to a literal search.
func (t *SearchVaultTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName     xml.Name `xml:"arguments"`
		Query       string   `xml:"query"`
		FilePattern string   `xml:"file_pattern"`
		MaxResults  int      `xml:"max_results"`
	}

	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	if strings.TrimSpace(input.Query) == "" {
		return "", nil, fmt.Errorf("missing required parameter: query")
	}

	terms := []string{input.Query}
	if t.expander != nil {
		expanded, err := t.expander.Expand(ctx, input.Query)
		if err != nil {
			t.logger.Warnf("query expansion failed, searching literally: %v", err)
		}
		if len(expanded) > 0 {
			terms = expanded
		}
	}

	matches, err := t.searcher.Search(ctx, search.Options{
		Terms:       terms,
		FilePattern: input.FilePattern,
		MaxResults:  input.MaxResults,
	})
	if err != nil {
		return "", nil, fmt.Errorf("search failed: %w", err)
	}

	metadata := map[string]interface{}{
		"match_count": len(matches),
		"terms":       terms,
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No matches for %q.", input.Query), metadata, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matching line(s):\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(&sb, "%s:%d: %s\n", m.Path, m.Line, m.Text)
	}
	return strings.TrimRight(sb.String(), "\n"), metadata, nil
}
