package memoize

import "errors"

// Sentinel errors for memoizer configuration.
var (
	// ErrInvalidTTL indicates a negative Config.TTL.
	ErrInvalidTTL = errors.New("memoize: ttl must not be negative")

	// ErrInvalidMaxItems indicates a negative Config.MaxItems.
	ErrInvalidMaxItems = errors.New("memoize: max items must not be negative")

	// ErrNilFunc indicates Wrap was given a nil function.
	ErrNilFunc = errors.New("memoize: wrapped function is nil")
)
