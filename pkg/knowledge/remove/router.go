// Package remove is the single entry point for deleting knowledge store
// entities. It accepts an opaque identifier or a memory name, classifies
// which storage domain owns it, enforces the domain's safety gates, and
// delegates to the owning store, normalizing every outcome into a flat
// Result. The router holds no state between calls.
package remove

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/keep/pkg/knowledge/memory"
	"github.com/entrhq/keep/pkg/knowledge/tier2"
	"github.com/entrhq/keep/pkg/knowledge/vaultfs"
	"github.com/entrhq/keep/pkg/security/vault"
)

// VaultRootProvider supplies the verified vault root. Implementations must
// return a non-empty, existing, explicitly confirmed root or an error;
// the router refuses vault-domain operations on error, surfacing it
// verbatim.
type VaultRootProvider interface {
	VerifiedVaultRoot() (string, error)
}

// Event describes a completed destructive action for the audit layer.
type Event struct {
	Domain  string
	Ref     string
	Deleted bool
}

// Recorder receives removal events for downstream commit/tag annotation.
// Router correctness never depends on a recorder succeeding.
type Recorder interface {
	RecordRemoval(ctx context.Context, ev Event)
}

// Params are the caller-supplied removal parameters. Exactly one of
// Identifier or Name must be set. Scope applies to Name only and defaults
// to the global memory scope.
type Params struct {
	Identifier string `json:"identifier,omitempty"`
	Name       string `json:"name,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Confirm    bool   `json:"confirm,omitempty"`
}

// Router routes removal requests to the owning store.
type Router struct {
	config   VaultRootProvider
	tier2    *tier2.Store
	memory   *memory.Store
	recorder Recorder
}

// NewRouter creates a removal router over the given collaborators.
// recorder may be nil.
func NewRouter(config VaultRootProvider, t2 *tier2.Store, mem *memory.Store, recorder Recorder) *Router {
	return &Router{
		config:   config,
		tier2:    t2,
		memory:   mem,
		recorder: recorder,
	}
}

// Remove executes a removal request. All failures come back as structured
// results; no storage-layer fault escapes unclassified, and no mutation
// occurs on any failure path.
func (r *Router) Remove(ctx context.Context, p Params) Result {
	// ParamCheck: exactly one of identifier or name.
	if p.Identifier == "" && p.Name == "" {
		return errorResult(KindValidation, "provide either 'identifier' or 'name' to remove")
	}
	if p.Identifier != "" && p.Name != "" {
		return errorResult(KindValidation, "only one of 'identifier' or 'name' may be given")
	}

	if p.Name != "" {
		return r.removeMemory(ctx, p)
	}

	switch ref := ParseIdentifier(p.Identifier).(type) {
	case VaultRef:
		return r.removeVaultFile(ctx, ref, p.Confirm)
	case MemoryRef:
		// Memory entries are never deleted by identifier: a single
		// canonical deletion path avoids ambiguous scope inference
		// from identifier strings.
		return errorResult(KindValidation,
			"memory entries cannot be removed by identifier; pass the 'name' parameter instead")
	case Tier2Ref:
		return r.removeTier2(ctx, ref)
	default:
		return errorResult(KindInternal, fmt.Sprintf("unhandled identifier type %T", ref))
	}
}

func (r *Router) removeVaultFile(ctx context.Context, ref VaultRef, confirm bool) Result {
	root, err := r.config.VerifiedVaultRoot()
	if err != nil {
		return errorResult(KindConfig, err.Error())
	}

	guard, err := vault.NewGuard(root)
	if err != nil {
		return errorResult(KindConfig, err.Error())
	}

	// Path validation runs before the confirmation gate so traversal
	// attempts are rejected even when confirm is absent.
	if _, err := guard.ValidatePath(ref.RelativePath); err != nil {
		if errors.Is(err, vault.ErrPathEscape) {
			return errorResult(KindPathEscape,
				fmt.Sprintf("path %q escapes the vault boundary", ref.RelativePath))
		}
		return errorResult(KindValidation, err.Error())
	}

	if !confirm {
		return confirmationResult(fmt.Sprintf(
			"Deleting vault file %q is permanent. Pass confirm=true to proceed.", ref.RelativePath))
	}

	err = vaultfs.NewStore(guard).Delete(ctx, ref.RelativePath)
	if errors.Is(err, vaultfs.ErrNotFound) {
		return errorResult(KindNotFound, fmt.Sprintf("vault file %q not found", ref.RelativePath))
	}
	if err != nil {
		return errorResult(KindInternal, err.Error())
	}

	r.record(ctx, Event{Domain: "vault", Ref: ref.RelativePath, Deleted: true})
	return deletedResult(fmt.Sprintf("Deleted vault file %q", ref.RelativePath))
}

func (r *Router) removeMemory(ctx context.Context, p Params) Result {
	scope := p.Scope
	if scope == "" {
		scope = memory.ScopeGlobal
	}

	outcome, err := r.memory.Delete(ctx, p.Name, scope, p.Confirm)
	if err != nil {
		return errorResult(KindValidation, err.Error())
	}

	switch {
	case outcome.ConfirmationRequired:
		return confirmationResult(outcome.Prompt)
	case outcome.Deleted:
		r.record(ctx, Event{Domain: "memory", Ref: scope + "/" + p.Name, Deleted: true})
		return deletedResult(fmt.Sprintf("Deleted memory %q (scope %s)", p.Name, scope))
	default:
		return softNotFoundResult()
	}
}

func (r *Router) removeTier2(ctx context.Context, ref Tier2Ref) Result {
	// Tier2 deletions carry no safety gate: ids are opaque and content
	// addressed, so the blast radius is a single generated document.
	deleted, err := r.tier2.Delete(ctx, ref.ID)
	if err != nil {
		return errorResult(KindValidation, err.Error())
	}
	if !deleted {
		return softNotFoundResult()
	}

	r.record(ctx, Event{Domain: "tier2", Ref: ref.ID, Deleted: true})
	return deletedResult(fmt.Sprintf("Deleted document %q", ref.ID))
}

func (r *Router) record(ctx context.Context, ev Event) {
	if r.recorder != nil {
		r.recorder.RecordRemoval(ctx, ev)
	}
}
