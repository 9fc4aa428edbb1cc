package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/keep/pkg/knowledge/remove"
	"github.com/entrhq/keep/pkg/llm"
	"github.com/entrhq/keep/pkg/logging"
)

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// commitPrompt asks the provider for a one-line conventional commit
// message describing the removal.
const commitPrompt = "Write a one-line conventional commit message for deleting %q from a personal knowledge vault. " +
	"Reply with the message only."

// FormatCommitMessage renders the deterministic commit message for a
// removal event.
func FormatCommitMessage(ev remove.Event) string {
	return fmt.Sprintf("chore(%s): remove %s", ev.Domain, ev.Ref)
}

// FormatTag renders the audit tag name for a removal at the given time.
// Tags are unique per second; a second removal in the same second loses
// its tag but keeps its commit, which is acceptable for an audit trail.
func FormatTag(ev remove.Event, at time.Time) string {
	return fmt.Sprintf("keep/remove/%s", at.UTC().Format("20060102T150405Z"))
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithProvider enables LLM-generated commit messages. The deterministic
// format remains the fallback on any provider failure.
func WithProvider(provider llm.Provider) RecorderOption {
	return func(r *Recorder) {
		r.provider = provider
	}
}

// WithTagging enables annotated audit tags on removal commits.
func WithTagging() RecorderOption {
	return func(r *Recorder) {
		r.tagging = true
	}
}

// Recorder implements remove.Recorder over the vault's git repository.
// Recording is strictly best-effort: failures are logged and swallowed so
// the removal result is never affected.
type Recorder struct {
	roots    remove.VaultRootProvider
	provider llm.Provider
	tagging  bool
	logger   *logging.Logger
}

// NewRecorder creates an audit recorder. The logger error from fallback
// mode is deliberately ignored; audit logging is best-effort by contract.
func NewRecorder(roots remove.VaultRootProvider, opts ...RecorderOption) *Recorder {
	logger, _ := logging.NewLogger("audit")
	r := &Recorder{roots: roots, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordRemoval records a completed removal. Vault events produce a
// commit (and optionally a tag) in the vault repository; other domains
// are logged only.
func (r *Recorder) RecordRemoval(ctx context.Context, ev remove.Event) {
	r.logger.Infof("removal domain=%s ref=%s deleted=%v", ev.Domain, ev.Ref, ev.Deleted)

	if ev.Domain != "vault" || !ev.Deleted {
		return
	}

	root, err := r.roots.VerifiedVaultRoot()
	if err != nil {
		r.logger.Warnf("skipping audit commit: %v", err)
		return
	}
	if !IsRepository(root) {
		r.logger.Debugf("vault root %s is not a git repository, skipping audit commit", root)
		return
	}

	if err := StagePath(root, ev.Ref); err != nil {
		r.logger.Warnf("failed to stage %s: %v", ev.Ref, err)
		return
	}

	message := r.commitMessage(ctx, ev)
	hash, err := CreateCommit(root, message)
	if err != nil {
		r.logger.Warnf("failed to commit removal of %s: %v", ev.Ref, err)
		return
	}
	r.logger.Infof("audit commit %s: %s", hash, message)

	if r.tagging {
		tag := FormatTag(ev, timeNow())
		if err := CreateTag(root, tag, message); err != nil {
			r.logger.Warnf("failed to tag removal commit: %v", err)
		}
	}
}

// commitMessage returns the LLM-generated message when a provider is
// configured and answers sensibly, the deterministic format otherwise.
func (r *Recorder) commitMessage(ctx context.Context, ev remove.Event) string {
	fallback := FormatCommitMessage(ev)
	if r.provider == nil {
		return fallback
	}

	response, err := r.provider.Complete(ctx, []llm.Message{
		llm.NewUserMessage(fmt.Sprintf(commitPrompt, ev.Ref)),
	})
	if err != nil {
		r.logger.Debugf("commit message generation failed, using fallback: %v", err)
		return fallback
	}

	message := strings.TrimSpace(strings.SplitN(response, "\n", 2)[0])
	if message == "" {
		return fallback
	}
	return message
}
