package dex

import "errors"

var (
	// ErrUsagePhase reports an operation attempted in the wrong section
	// phase: interning after addressing, or querying before it.
	ErrUsagePhase = errors.New("operation not allowed in this phase")
	// ErrNotFound reports an index or offset lookup for a value that was
	// never interned.
	ErrNotFound = errors.New("not found")
	// ErrCycle reports a reference-collection step that interned into a
	// section that had already been swept.
	ErrCycle = errors.New("cyclic section dependency")
	// ErrSizeMismatch reports an item whose written byte count differs
	// from its declared size.
	ErrSizeMismatch = errors.New("written size differs from declared size")
	// ErrIndexOverflow reports an index too large for the field that
	// stores it.
	ErrIndexOverflow = errors.New("index does not fit its field")
)
