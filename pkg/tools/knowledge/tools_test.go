package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/entrhq/keep/pkg/knowledge/memory"
	"github.com/entrhq/keep/pkg/knowledge/remove"
	"github.com/entrhq/keep/pkg/knowledge/search"
	"github.com/entrhq/keep/pkg/knowledge/tier2"
	"github.com/entrhq/keep/pkg/security/vault"
)

type staticRoot struct {
	root string
}

func (s staticRoot) VerifiedVaultRoot() (string, error) {
	return s.root, nil
}

func setupStores(t *testing.T) (*tier2.Store, *memory.Store, string) {
	t.Helper()
	base := t.TempDir()

	t2, err := tier2.NewStore(filepath.Join(base, "tier2"))
	if err != nil {
		t.Fatalf("NewStore(tier2) failed: %v", err)
	}
	mem, err := memory.NewStore(filepath.Join(base, "memory"))
	if err != nil {
		t.Fatalf("NewStore(memory) failed: %v", err)
	}

	vaultDir := filepath.Join(base, "vault")
	if err := os.MkdirAll(vaultDir, 0o750); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	return t2, mem, vaultDir
}

func TestRemoveTool_VaultFile(t *testing.T) {
	t2, mem, vaultDir := setupStores(t)
	target := filepath.Join(vaultDir, "old.md")
	if err := os.WriteFile(target, []byte("stale"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	router := remove.NewRouter(staticRoot{root: vaultDir}, t2, mem, nil)
	tool := NewRemoveTool(router)

	// Without confirm the file must survive.
	result, metadata, err := tool.Execute(context.Background(),
		[]byte(`<arguments><identifier>vault::old.md</identifier></arguments>`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if metadata["confirmation_required"] != true {
		t.Errorf("Expected confirmation_required=true, got %v", metadata["confirmation_required"])
	}
	if !strings.Contains(result, "confirm=true") {
		t.Errorf("Expected confirmation prompt, got: %s", result)
	}
	if _, statErr := os.Stat(target); statErr != nil {
		t.Error("File should still exist before confirmation")
	}

	// With confirm it is deleted.
	result, metadata, err = tool.Execute(context.Background(),
		[]byte(`<arguments><identifier>vault::old.md</identifier><confirm>true</confirm></arguments>`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if metadata["deleted"] != true {
		t.Errorf("Expected deleted=true, got %v", metadata["deleted"])
	}
	if !strings.Contains(result, "Deleted vault file") {
		t.Errorf("Unexpected result message: %s", result)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("File should be gone after confirmed removal")
	}
}

func TestRemoveTool_MissingVaultFileIsError(t *testing.T) {
	t2, mem, vaultDir := setupStores(t)
	router := remove.NewRouter(staticRoot{root: vaultDir}, t2, mem, nil)
	tool := NewRemoveTool(router)

	_, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><identifier>vault::absent.md</identifier><confirm>true</confirm></arguments>`))
	if err == nil {
		t.Fatal("Expected error for missing vault file")
	}
	if !strings.Contains(err.Error(), "not_found") {
		t.Errorf("Expected not_found error, got: %v", err)
	}
}

func TestRemoveTool_Tier2SoftNotFound(t *testing.T) {
	t2, mem, vaultDir := setupStores(t)
	router := remove.NewRouter(staticRoot{root: vaultDir}, t2, mem, nil)
	tool := NewRemoveTool(router)

	result, metadata, err := tool.Execute(context.Background(),
		[]byte(`<arguments><identifier>d::00000000-0000-0000-0000-000000000000</identifier></arguments>`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if metadata["deleted"] != false {
		t.Errorf("Expected deleted=false, got %v", metadata["deleted"])
	}
	if !strings.Contains(result, "Nothing to remove") {
		t.Errorf("Unexpected result message: %s", result)
	}
}

func TestRemoveTool_ParamValidation(t *testing.T) {
	t2, mem, vaultDir := setupStores(t)
	router := remove.NewRouter(staticRoot{root: vaultDir}, t2, mem, nil)
	tool := NewRemoveTool(router)

	_, _, err := tool.Execute(context.Background(), []byte(`<arguments></arguments>`))
	if err == nil {
		t.Error("Expected error when neither identifier nor name is given")
	}
}

func TestStoreMemoryTool(t *testing.T) {
	_, mem, _ := setupStores(t)
	tool := NewStoreMemoryTool(mem)

	result, metadata, err := tool.Execute(context.Background(),
		[]byte(`<arguments><name>coffee-preference</name><content>flat white, no sugar</content></arguments>`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(result, "coffee-preference") {
		t.Errorf("Unexpected result message: %s", result)
	}
	if metadata["scope"] != memory.ScopeGlobal {
		t.Errorf("Expected default scope 'global', got %v", metadata["scope"])
	}

	entry, found, err := mem.Get(context.Background(), "coffee-preference", memory.ScopeGlobal)
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if entry.Content != "flat white, no sugar" {
		t.Errorf("Unexpected stored content: %q", entry.Content)
	}
}

func TestStoreMemoryTool_MissingParameters(t *testing.T) {
	_, mem, _ := setupStores(t)
	tool := NewStoreMemoryTool(mem)

	if _, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><content>orphan</content></arguments>`)); err == nil {
		t.Error("Expected error for missing name")
	}
	if _, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><name>empty</name></arguments>`)); err == nil {
		t.Error("Expected error for missing content")
	}
}

func TestWriteAndReadDocumentTools(t *testing.T) {
	t2, _, _ := setupStores(t)
	writeTool := NewWriteDocumentTool(t2)
	readTool := NewReadDocumentTool(t2)

	_, metadata, err := writeTool.Execute(context.Background(),
		[]byte(`<arguments><content>meeting notes</content><content_type>summary</content_type></arguments>`))
	if err != nil {
		t.Fatalf("Write Execute failed: %v", err)
	}
	id, ok := metadata["identifier"].(string)
	if !ok || id == "" {
		t.Fatalf("Expected identifier in metadata, got %v", metadata["identifier"])
	}
	if !strings.HasPrefix(id, "s::") {
		t.Errorf("Expected 's::' prefix for summary, got %q", id)
	}

	result, readMeta, err := readTool.Execute(context.Background(),
		[]byte(`<arguments><identifier>`+id+`</identifier></arguments>`))
	if err != nil {
		t.Fatalf("Read Execute failed: %v", err)
	}
	if result != "meeting notes" {
		t.Errorf("Expected document content, got %q", result)
	}
	if readMeta["found"] != true {
		t.Errorf("Expected found=true, got %v", readMeta["found"])
	}
}

func TestReadDocumentTool_UnknownIdentifier(t *testing.T) {
	t2, _, _ := setupStores(t)
	tool := NewReadDocumentTool(t2)

	result, metadata, err := tool.Execute(context.Background(),
		[]byte(`<arguments><identifier>d::missing</identifier></arguments>`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if metadata["found"] != false {
		t.Errorf("Expected found=false, got %v", metadata["found"])
	}
	if !strings.Contains(result, "No document found") {
		t.Errorf("Unexpected result message: %s", result)
	}
}

func TestSearchVaultTool(t *testing.T) {
	_, _, vaultDir := setupStores(t)
	if err := os.WriteFile(filepath.Join(vaultDir, "garden.md"), []byte("tomatoes need sun\nwater daily"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	guard, err := vault.NewGuard(vaultDir)
	if err != nil {
		t.Fatalf("NewGuard failed: %v", err)
	}
	tool := NewSearchVaultTool(search.NewSearcher(guard), nil)

	result, metadata, err := tool.Execute(context.Background(),
		[]byte(`<arguments><query>tomatoes</query></arguments>`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if metadata["match_count"] != 1 {
		t.Errorf("Expected 1 match, got %v", metadata["match_count"])
	}
	if !strings.Contains(result, "garden.md:1") {
		t.Errorf("Expected match location in result, got: %s", result)
	}

	result, metadata, err = tool.Execute(context.Background(),
		[]byte(`<arguments><query>cucumbers</query></arguments>`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if metadata["match_count"] != 0 {
		t.Errorf("Expected 0 matches, got %v", metadata["match_count"])
	}
	if !strings.Contains(result, "No matches") {
		t.Errorf("Unexpected result message: %s", result)
	}
}

func TestSearchVaultTool_MissingQuery(t *testing.T) {
	_, _, vaultDir := setupStores(t)
	guard, err := vault.NewGuard(vaultDir)
	if err != nil {
		t.Fatalf("NewGuard failed: %v", err)
	}
	tool := NewSearchVaultTool(search.NewSearcher(guard), nil)

	if _, _, err := tool.Execute(context.Background(), []byte(`<arguments></arguments>`)); err == nil {
		t.Error("Expected error for missing query")
	}
}
