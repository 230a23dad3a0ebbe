package errors

import "errors"

// Common errors used throughout the application
var (
	// Retrieval errors
	ErrRetrievalUnavailable = errors.New("retrieval service unavailable")

	// Arbiter errors. Transport failures and malformed model output are
	// distinct so callers can decide between retrying and degrading to
	// retrieval-only tags.
	ErrArbiterUnavailable = errors.New("tag arbiter unavailable")
	ErrArbiterBadResponse = errors.New("tag arbiter returned malformed output")

	// Validation errors
	ErrEmptyText        = errors.New("text cannot be empty")
	ErrInvalidBoolean   = errors.New("invalid boolean value (use true/false)")
	ErrUnknownConfigKey = errors.New("unknown configuration key")

	// Vault errors
	ErrVaultNotFound = errors.New("vault directory not found")
)
