package fhcache

import "errors"

// Error taxonomy for the handle cache and namespace layer. These are kinds,
// not wrapped causes; callers compare with errors.Is against these sentinels
// and the adapter/presentation layer maps them to POSIX errno values.
var (
	ErrNotFound         = errors.New("fhcache: not found")
	ErrAlreadyExists    = errors.New("fhcache: already exists")
	ErrPermissionDenied = errors.New("fhcache: permission denied")
	ErrInvalidArgument  = errors.New("fhcache: invalid argument")
	ErrPathTooDeep      = errors.New("fhcache: path too deep")
	ErrOutOfHandles     = errors.New("fhcache: out of handles")
	ErrTooLarge         = errors.New("fhcache: too large")
	ErrUserSuspended    = errors.New("fhcache: user suspended")
	ErrBackend          = errors.New("fhcache: backend error")
	ErrWrongKind        = errors.New("fhcache: wrong handle kind")

	// ErrFatalInvariant marks a condition the design calls a programming
	// error: a duplicate insert under a held latch (index.insertLatched).
	// Mount.LookupFH logs it and retries the lookup rather than panicking.
	ErrFatalInvariant = errors.New("fhcache: fatal invariant violation")
)
