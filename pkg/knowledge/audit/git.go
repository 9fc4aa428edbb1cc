// Package audit records successful destructive actions for the vault's
// version-control trail. Vault removals are staged, committed with a
// formatted message, and optionally tagged; tier2 and memory removals are
// logged only, since those stores live outside the vault tree.
package audit

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// runGit executes a git subcommand in workingDir and returns stdout.
func runGit(workingDir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("audit: git %s failed: %w, stderr: %s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// IsRepository reports whether workingDir is inside a git work tree.
func IsRepository(workingDir string) bool {
	out, err := runGit(workingDir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// StagePath stages a single path, including its deletion.
func StagePath(workingDir, path string) error {
	_, err := runGit(workingDir, "add", "-A", "--", path)
	return err
}

// CreateCommit commits staged changes with the given message and returns
// the short commit hash.
func CreateCommit(workingDir, message string) (string, error) {
	if _, err := runGit(workingDir, "commit", "-m", message); err != nil {
		return "", err
	}
	out, err := runGit(workingDir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CreateTag creates an annotated tag pointing at HEAD.
func CreateTag(workingDir, tag, message string) error {
	_, err := runGit(workingDir, "tag", "-a", tag, "-m", message)
	return err
}
