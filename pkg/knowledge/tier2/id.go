package tier2

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// idSeparator joins the type letter and the unique suffix. Identifiers with
// other separators (vault::, memory::) are recognized by the router before
// tier2 ever sees them.
const idSeparator = "::"

// NewDocumentID generates a new unique document identifier encoding the
// content type as a single-letter prefix, e.g. "t::8f14e45f-...".
// Every call produces a fresh id; content is never hashed into it.
func NewDocumentID(contentType string) string {
	return typeLetter(contentType) + idSeparator + uuid.NewString()
}

// typeLetter derives the id prefix from the content type's primary type.
// Unknown or empty content types fall back to "d" (document).
func typeLetter(contentType string) string {
	for _, r := range strings.ToLower(contentType) {
		if unicode.IsLetter(r) {
			return string(r)
		}
	}
	return "d"
}
