package sessionmap

import "errors"

var (
	ErrNotFound = errors.New("sessionmap: session not found")

	// ErrFatalInvariant is raised by TouchSession when called on a session
	// not linked into any by-state list. The original asserts in this
	// case; the resolution recorded for this design is to return the error
	// to the caller, which treats it as a panic rather than continuing
	// with a session whose bookkeeping has drifted from the map's.
	ErrFatalInvariant = errors.New("sessionmap: fatal invariant violation")
)
