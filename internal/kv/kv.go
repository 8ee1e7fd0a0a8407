// Package kv defines the asynchronous key-value persistence boundary the
// value store writes through, plus an in-memory fallback implementation.
package kv

import "context"

// Logical keys.
const (
	KeyCapturedValues = "capturedValues"
	KeyConfig         = "config"
)

// Store is a versioned key-value byte store.
//
// Every successful write bumps the key's version. A missing key reports
// version 0, so CompareAndSwap with version 0 means "create if absent".
type Store interface {
	// Get returns the value and version stored under key.
	// A missing key returns (nil, 0, nil).
	Get(ctx context.Context, key string) ([]byte, int64, error)

	// Set unconditionally stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// CompareAndSwap stores value only if the key's current version equals
	// version. It reports whether the write happened.
	CompareAndSwap(ctx context.Context, key string, version int64, value []byte) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
