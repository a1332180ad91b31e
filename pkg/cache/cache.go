// Package cache stores solved plans between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps entries as JSON files under a directory (CLI default)
//   - [RedisCache] shares entries between server replicas
//   - [NullCache] stores nothing, used when caching is disabled
//
// Keys are produced by a [Keyer] so that callers never build key strings by
// hand. [ScopedKeyer] adds a namespace prefix on top of any keyer.
package cache

import (
	"context"
	"time"
)

// TTLPlan is how long a solved plan stays cached. Plans are a pure function
// of their input, so the TTL only bounds disk and memory use.
const TTLPlan = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// and unreadable entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer generates cache keys.
type Keyer interface {
	// PlanKey returns the key for a plan solved from the descriptor set
	// hashed as inputHash under the named match policy.
	PlanKey(inputHash, policy string) string
}

// DefaultKeyer produces keys of the form "plan:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key generator.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey implements [Keyer].
func (DefaultKeyer) PlanKey(inputHash, policy string) string {
	return hashKey("plan", inputHash, policy)
}
