package tools

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestParseToolCall(t *testing.T) {
	t.Run("ValidToolCall", func(t *testing.T) {
		text := `Removing the stale note now.
<tool>
<server_name>local</server_name>
<tool_name>remove_knowledge</tool_name>
<arguments>
<identifier>vault::notes/old.md</identifier>
<confirm>true</confirm>
</arguments>
</tool>`

		toolCall, remaining, err := ParseToolCall(text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if toolCall.ToolName != "remove_knowledge" {
			t.Errorf("expected tool_name 'remove_knowledge', got '%s'", toolCall.ToolName)
		}
		if toolCall.ServerName != "local" {
			t.Errorf("expected server_name 'local', got '%s'", toolCall.ServerName)
		}
		if remaining != "Removing the stale note now." {
			t.Errorf("unexpected remaining text: '%s'", remaining)
		}
	})

	t.Run("DefaultServerName", func(t *testing.T) {
		text := `<tool><tool_name>search_vault</tool_name><arguments><query>gardening</query></arguments></tool>`
		toolCall, _, err := ParseToolCall(text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if toolCall.ServerName != "local" {
			t.Errorf("expected default server_name 'local', got '%s'", toolCall.ServerName)
		}
	})

	t.Run("NoToolCall", func(t *testing.T) {
		_, _, err := ParseToolCall("just some prose, no tool here")
		if err == nil {
			t.Error("expected error when no tool call present")
		}
	})

	t.Run("MissingToolName", func(t *testing.T) {
		text := `<tool><arguments><query>x</query></arguments></tool>`
		_, _, err := ParseToolCall(text)
		if err == nil {
			t.Error("expected error for missing tool_name")
		}
	})

	t.Run("UnescapedAmpersandInArguments", func(t *testing.T) {
		text := `<tool><tool_name>store_memory</tool_name><arguments><content>cats & dogs</content></arguments></tool>`
		toolCall, _, err := ParseToolCall(text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if toolCall.ToolName != "store_memory" {
			t.Errorf("expected tool_name 'store_memory', got '%s'", toolCall.ToolName)
		}
	})
}

func TestHasToolCall(t *testing.T) {
	if !HasToolCall(`<tool><tool_name>x</tool_name></tool>`) {
		t.Error("expected tool call to be detected")
	}
	if HasToolCall("plain text") {
		t.Error("did not expect tool call in plain text")
	}
}

func TestGetArgumentsXML(t *testing.T) {
	text := `<tool><tool_name>remove_knowledge</tool_name><arguments><name>coffee-preference</name></arguments></tool>`
	toolCall, _, err := ParseToolCall(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	argsXML := toolCall.GetArgumentsXML()
	if !strings.HasPrefix(string(argsXML), "<arguments>") || !strings.HasSuffix(string(argsXML), "</arguments>") {
		t.Errorf("arguments XML not wrapped correctly: %s", argsXML)
	}

	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Name    string   `xml:"name"`
	}
	if err := UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		t.Fatalf("failed to unmarshal arguments: %v", err)
	}
	if input.Name != "coffee-preference" {
		t.Errorf("expected name 'coffee-preference', got '%s'", input.Name)
	}
}

func TestEscapeUnescapedAmpersands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare ampersand", "a & b", "a &amp; b"},
		{"existing entity preserved", "a &amp; b", "a &amp; b"},
		{"numeric entity preserved", "a &#38; b", "a &#38; b"},
		{"mixed", "a & b &lt; c", "a &amp; b &lt; c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(escapeUnescapedAmpersands([]byte(tt.input)))
			if got != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestBaseToolSchema(t *testing.T) {
	properties := map[string]interface{}{
		"identifier": map[string]interface{}{
			"type":        "string",
			"description": "The identifier",
		},
	}

	schema := BaseToolSchema(properties, []string{"identifier"})

	if schema["type"] != "object" {
		t.Errorf("expected type 'object', got '%v'", schema["type"])
	}
	if _, ok := schema["properties"]; !ok {
		t.Error("schema should have 'properties' field")
	}
	if _, ok := schema["required"]; !ok {
		t.Error("schema should have 'required' field")
	}

	noRequired := BaseToolSchema(properties, nil)
	if _, ok := noRequired["required"]; ok {
		t.Error("schema should omit 'required' when empty")
	}
}
