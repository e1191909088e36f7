// Package metadata is a small key/value store on top of the local SQLite
// database. The client keeps its sign-in state and the last joined session
// here.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
