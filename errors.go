package svh

import "errors"

var (
	// ErrNoParent indicates Pop was asked to walk past the root.
	ErrNoParent = errors.New("svh: no parent to pop to")
	// ErrNotFound indicates no scope on the ancestor chain holds the
	// requested type and auto-insert did not apply.
	ErrNotFound = errors.New("svh: type not found")
	// ErrTypeMismatch indicates an entry exists under a type's key but its
	// payload is of a different type. It signals a corrupted key-to-type
	// mapping and is not reachable through the public API alone.
	ErrTypeMismatch = errors.New("svh: existing child has unexpected type")
)
