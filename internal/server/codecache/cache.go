// Package codecache stores pending confirmation codes under a key (the
// username) for a limited time. Backends are interchangeable: an in-process
// map, a PostgreSQL table or a local LevelDB directory.
package codecache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a volatile key/value store with per-entry expiry. Put overwrites
// any previous value for key. Get reports ok=false for missing and expired
// entries alike.
type Cache interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// Backend names accepted by the configuration.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendLevelDB  = "leveldb"
)

// ValidateBackend rejects unknown backend names.
func ValidateBackend(name string) error {
	switch name {
	case BackendMemory, BackendPostgres, BackendLevelDB:
		return nil
	default:
		return fmt.Errorf("unknown code cache backend %q", name)
	}
}
