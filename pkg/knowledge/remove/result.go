package remove

// ErrorKind classifies a removal failure so callers can handle outcomes
// exhaustively instead of matching on message text.
type ErrorKind string

const (
	// KindValidation marks malformed parameters: both or neither of
	// identifier and name, or a memory deletion attempted via identifier.
	KindValidation ErrorKind = "validation"

	// KindPathEscape marks a vault path that resolved outside the vault
	// root. Escapes are never clamped; the request is rejected outright.
	KindPathEscape ErrorKind = "path_escape"

	// KindConfig marks an unverified or unconfigured vault root, surfaced
	// verbatim from the configuration collaborator.
	KindConfig ErrorKind = "config"

	// KindNotFound marks a vault file that was absent after passing path
	// validation and confirmation. Only the vault domain treats absence
	// as an error; tier2 and memory report it as a soft success.
	KindNotFound ErrorKind = "not_found"

	// KindInternal marks an unclassified storage-layer fault. The router
	// never lets one escape as a raw error.
	KindInternal ErrorKind = "internal"
)

// ResultError is the error variant payload of a Result.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Result is the uniform response for every removal call. Exactly one of
// Err or (Deleted | ConfirmationRequired) is meaningful per call.
// Success is false iff a validation, classification, configuration, or
// path error occurred; "not found" in soft domains and "needs
// confirmation" are success outcomes.
type Result struct {
	Success              bool         `json:"success"`
	Deleted              bool         `json:"deleted"`
	Reason               string       `json:"reason,omitempty"`
	ConfirmationRequired bool         `json:"confirmation_required,omitempty"`
	Message              string       `json:"message,omitempty"`
	Err                  *ResultError `json:"error,omitempty"`
}

func errorResult(kind ErrorKind, message string) Result {
	return Result{
		Success: false,
		Err:     &ResultError{Kind: kind, Message: message},
	}
}

func deletedResult(message string) Result {
	return Result{Success: true, Deleted: true, Message: message}
}

func softNotFoundResult() Result {
	return Result{Success: true, Deleted: false, Reason: "not found"}
}

func confirmationResult(prompt string) Result {
	return Result{Success: true, ConfirmationRequired: true, Message: prompt}
}
