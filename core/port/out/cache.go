package out

import (
	"context"
	"time"
)

// Cache stores JSON-encoded values with a TTL. Used for category results
// so repeated classification of the same record is served locally.
type Cache interface {
	// GetJSON loads a value into dest; found is false on a miss.
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)

	// SetJSON stores a value with the given TTL.
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
