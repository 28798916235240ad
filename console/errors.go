package console

import "errors"

// Error taxonomy for native console failures. Every device error is mapped
// onto one of these sentinels (wrapped, so errors.Is works) and returned
// immediately; the core never retries a failed native call.
var (
	// ErrInvalidHandle means the console is not attached or was detached.
	ErrInvalidHandle = errors.New("invalid console handle")

	// ErrInvalidParameter covers out-of-range slots, zero-size regions,
	// and malformed coordinates.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrAccessDenied means another process holds exclusive access.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnsupported means the feature is unavailable on the current
	// console mode or version.
	ErrUnsupported = errors.New("unsupported console operation")
)
