package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestGuard(t *testing.T) (*Guard, string) {
	t.Helper()
	tmpDir := t.TempDir()
	// Resolve symlinks so assertions compare like with like on macOS
	// where TempDir lives under /var -> /private/var.
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	guard, err := NewGuard(resolved)
	if err != nil {
		t.Fatalf("NewGuard failed: %v", err)
	}
	return guard, resolved
}

func TestNewGuard(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		vaultDir string
		wantErr  bool
	}{
		{
			name:     "valid existing directory",
			vaultDir: tmpDir,
			wantErr:  false,
		},
		{
			name:     "current directory",
			vaultDir: ".",
			wantErr:  false,
		},
		{
			name:     "empty directory",
			vaultDir: "",
			wantErr:  true,
		},
		{
			name:     "non-existent directory",
			vaultDir: "/tmp/does-not-exist-12345",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, err := NewGuard(tt.vaultDir)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGuard() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && guard == nil {
				t.Error("NewGuard() returned nil guard without error")
			}
			if !tt.wantErr && guard.vaultDir == "" {
				t.Error("NewGuard() created guard with empty vault directory")
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	guard, vaultDir := newTestGuard(t)

	if err := os.WriteFile(filepath.Join(vaultDir, "note.md"), []byte("hello"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantErr    bool
		wantEscape bool
	}{
		{
			name: "existing file inside vault",
			path: "note.md",
		},
		{
			name: "non-existent file inside vault",
			path: "missing/nested.md",
		},
		{
			name: "dot path",
			path: ".",
		},
		{
			name:       "parent traversal",
			path:       "../../etc/passwd",
			wantErr:    true,
			wantEscape: true,
		},
		{
			name:       "traversal hidden mid-path",
			path:       "sub/../../outside.md",
			wantErr:    true,
			wantEscape: true,
		},
		{
			name:       "absolute path outside vault",
			path:       "/etc/passwd",
			wantErr:    true,
			wantEscape: true,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := guard.ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if tt.wantEscape && !errors.Is(err, ErrPathEscape) {
				t.Errorf("ValidatePath(%q) error = %v, want ErrPathEscape", tt.path, err)
			}
			if !tt.wantErr && !guard.IsWithinVault(resolved) {
				t.Errorf("ValidatePath(%q) returned path %q outside vault", tt.path, resolved)
			}
		})
	}
}

func TestValidatePathSymlinkEscape(t *testing.T) {
	guard, vaultDir := newTestGuard(t)

	outside := t.TempDir()
	link := filepath.Join(vaultDir, "sneaky")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if _, err := guard.ValidatePath("sneaky/target.md"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("Expected ErrPathEscape through symlink, got %v", err)
	}
}

func TestIsWithinVault(t *testing.T) {
	guard, vaultDir := newTestGuard(t)

	if !guard.IsWithinVault(vaultDir) {
		t.Error("Vault root itself should be within vault")
	}
	if !guard.IsWithinVault(filepath.Join(vaultDir, "a", "b")) {
		t.Error("Nested path should be within vault")
	}
	if guard.IsWithinVault(filepath.Dir(vaultDir)) {
		t.Error("Parent of vault root should not be within vault")
	}
	// Sibling with the vault dir as a name prefix must not pass.
	if guard.IsWithinVault(vaultDir + "-sibling") {
		t.Error("Prefix-sibling directory should not be within vault")
	}
}

func TestMakeRelative(t *testing.T) {
	guard, vaultDir := newTestGuard(t)

	rel, err := guard.MakeRelative(filepath.Join(vaultDir, "docs", "note.md"))
	if err != nil {
		t.Fatalf("MakeRelative failed: %v", err)
	}
	if rel != filepath.Join("docs", "note.md") {
		t.Errorf("Expected docs/note.md, got %q", rel)
	}

	if _, err := guard.MakeRelative("/somewhere/else"); err == nil {
		t.Error("Expected error for path outside vault")
	}
}

func TestShouldIgnore(t *testing.T) {
	tmpDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	ignoreFile := "*.tmp\ndrafts/**\n!drafts/keep.md\n"
	if err := os.WriteFile(filepath.Join(resolved, IgnoreFileName), []byte(ignoreFile), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	guard, err := NewGuard(resolved)
	if err != nil {
		t.Fatalf("NewGuard failed: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"scratch.tmp", true},
		{"note.md", false},
		{"drafts/wip.md", true},
		{"drafts/keep.md", false},
		{".git/config", true},
		{".keep/tier2/doc.md", true},
	}

	for _, tt := range tests {
		if got := guard.ShouldIgnore(tt.path); got != tt.want {
			t.Errorf("ShouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
