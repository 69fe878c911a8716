// Package metadata is the client's persistent key/value storage: the sqlite
// counterpart of browser local storage. It holds the session token and the
// device id.
package metadata

import (
	"context"
	"time"
)

// Entry is a stored value with the time it was last written.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Repository reads and writes metadata rows. Lookups of absent keys return
// (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetEntry(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
