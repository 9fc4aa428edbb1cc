package remove

import "strings"

// Identifier prefixes recognized by the classifier. Anything else is
// treated as a tier2 document id.
const (
	vaultPrefix  = "vault::"
	memoryPrefix = "memory::"
)

// Identifier is the parsed, typed form of a caller-supplied identifier
// string. It is produced once by ParseIdentifier and consumed by a single
// dispatch switch; domain is never re-derived from string prefixes at
// other call sites.
type Identifier interface {
	isIdentifier()
}

// VaultRef addresses a file relative to the vault root.
type VaultRef struct {
	RelativePath string
}

// MemoryRef is the surface form of a memory identifier. It is recognized
// only so the router can redirect the caller to the name parameter; it is
// never executed as a deletion domain.
type MemoryRef struct {
	Scope string
	Name  string
}

// Tier2Ref addresses a tier2 document by its opaque id. It is the
// catch-all domain for identifiers with no recognized prefix.
type Tier2Ref struct {
	ID string
}

func (VaultRef) isIdentifier()  {}
func (MemoryRef) isIdentifier() {}
func (Tier2Ref) isIdentifier()  {}

// ParseIdentifier classifies a raw identifier string into its typed form.
func ParseIdentifier(raw string) Identifier {
	switch {
	case strings.HasPrefix(raw, vaultPrefix):
		return VaultRef{RelativePath: strings.TrimPrefix(raw, vaultPrefix)}
	case strings.HasPrefix(raw, memoryPrefix):
		rest := strings.TrimPrefix(raw, memoryPrefix)
		scope, name, _ := strings.Cut(rest, "::")
		return MemoryRef{Scope: scope, Name: name}
	default:
		return Tier2Ref{ID: raw}
	}
}
