// Package tier2 provides the content-addressable document store. Documents
// are written under generated opaque identifiers, read back by id, and
// deleted idempotently. Ids are never derived from content: every write
// produces a fresh identifier.
package tier2
