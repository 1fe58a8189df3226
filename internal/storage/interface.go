package storage

import (
	"context"
	"errors"
)

// Keys used by the client for its durable state.
const (
	KeyToken           = "token"
	KeyUser            = "user"
	KeyPlatformReports = "platformReports"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the client's durable key/value storage. Values are opaque strings,
// usually JSON documents.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
