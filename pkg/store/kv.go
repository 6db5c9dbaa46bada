// Package store provides the pluggable key-value storage the engine keeps
// its caches and agent trust state in. Backends: in-memory, Redis and SQL
// (SQLite or Postgres). Production persistence swaps in behind the KV
// interface without touching engine logic.
package store

import "context"

// KV is the storage contract injected into the engine.
type KV interface {
	// Get returns the value for key and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value for key, creating or replacing it.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ScanPrefix returns every key/value pair whose key starts with prefix.
	ScanPrefix(ctx context.Context, prefix string) (map[string][]byte, error)
}

// DeletePrefix removes every key under prefix. Shared across backends since
// it composes from the KV primitives.
func DeletePrefix(ctx context.Context, kv KV, prefix string) error {
	entries, err := kv.ScanPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	for key := range entries {
		if err := kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
