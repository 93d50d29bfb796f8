package treestore

import "errors"

// Domain-specific errors for tree store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a queried topic has no retained value
	// and no descendants.
	ErrNotFound = errors.New("treestore: topic not found")

	// ErrInvalidDepth is returned when a query supplies a negative or
	// non-numeric depth.
	ErrInvalidDepth = errors.New("treestore: depth must be a non-negative integer")

	// ErrSnapshotFailed is returned when persisting or loading the
	// SQLite snapshot fails.
	ErrSnapshotFailed = errors.New("treestore: snapshot failed")
)
