package store

import (
	"context"
)

// Backend persists whole named documents as raw JSON bytes.
// Load returns nil data and a nil error when the document does not exist yet.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}
