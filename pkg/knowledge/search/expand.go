// Package search provides free-text search over the vault: LLM-backed
// query expansion plus a glob-filtered file walk honoring the vault guard
// and ignore patterns.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/keep/pkg/llm"
)

const (
	// maxQueryTokens bounds the user query embedded in the expansion
	// prompt so an oversized query cannot blow the model's context.
	maxQueryTokens = 256

	// maxExpansions caps how many alternate phrasings are requested.
	maxExpansions = 5

	// tokenEncoding is the tiktoken encoding used for truncation.
	tokenEncoding = "cl100k_base"
)

// Expander widens a free-text query into alternate phrasings through an
// LLM provider. The original query is always the first returned term.
type Expander struct {
	provider llm.Provider
}

// NewExpander creates a query expander over the given provider.
func NewExpander(provider llm.Provider) *Expander {
	return &Expander{provider: provider}
}

// Expand returns the query plus up to maxExpansions alternate phrasings.
// Provider failures return the error alongside the bare query so callers
// can fall back to literal search.
func (e *Expander) Expand(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: query cannot be empty")
	}

	bounded, err := truncateTokens(query, maxQueryTokens)
	if err != nil {
		return nil, err
	}

	messages := []llm.Message{
		llm.NewSystemMessage("You expand search queries for a personal knowledge base. " +
			"Reply with alternate phrasings only, one per line, no numbering, no commentary."),
		llm.NewUserMessage(fmt.Sprintf("Give up to %d alternate phrasings for: %s", maxExpansions, bounded)),
	}

	response, err := e.provider.Complete(ctx, messages)
	if err != nil {
		return []string{query}, fmt.Errorf("search: query expansion failed: %w", err)
	}

	terms := []string{query}
	seen := map[string]bool{strings.ToLower(query): true}
	for _, line := range strings.Split(response, "\n") {
		term := strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. \t"))
		if term == "" || seen[strings.ToLower(term)] {
			continue
		}
		seen[strings.ToLower(term)] = true
		terms = append(terms, term)
		if len(terms) > maxExpansions {
			break
		}
	}
	return terms, nil
}

// truncateTokens cuts text down to at most maxTokens tokens.
func truncateTokens(text string, maxTokens int) (string, error) {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return "", fmt.Errorf("search: load token encoding: %w", err)
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	return enc.Decode(tokens[:maxTokens]), nil
}
