package domain

import "errors"

// Error taxonomy for the ledger core. Callers branch with errors.Is; the HTTP
// layer maps these onto status codes and user-facing messages.
var (
	// ErrUnauthorized means no resolvable identity for the request.
	ErrUnauthorized = errors.New("no resolvable identity")

	// ErrNotFound covers both "does not exist" and "not owned by this user".
	// The two are indistinguishable on purpose so that probing for foreign
	// resource ids leaks nothing.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited means the request quota was exceeded.
	ErrRateLimited = errors.New("too many requests")

	// ErrBlocked is a policy denial that is not quota related.
	ErrBlocked = errors.New("request blocked")

	// ErrInvalidFormat means an extraction response could not be parsed into
	// the expected structured fields.
	ErrInvalidFormat = errors.New("unparseable extraction response")

	// ErrExtractionFailed is a transport or model error during extraction.
	ErrExtractionFailed = errors.New("receipt extraction failed")

	// ErrPersistence means the underlying atomic write failed; no partial
	// state was committed.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidInput is a validation rejection before any write happens.
	ErrInvalidInput = errors.New("invalid input")
)
