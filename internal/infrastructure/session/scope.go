// Package session implements the two-scope session descriptor store: a
// durable scope backed by Redis and an ephemeral scope held in process
// memory. A descriptor lives in exactly one scope at a time, selected by the
// remember-me flag.
package session

import "context"

// Scope is one key-value storage location. Implementations hold at most one
// value per key and tolerate deletes of absent keys.
type Scope interface {
	Write(ctx context.Context, key string, value []byte) error
	// Read returns the stored value and whether the key was present.
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}
