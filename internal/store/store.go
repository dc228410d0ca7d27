// Package store is the key-value record store the domain packages persist into.
//
// Keys are namespaced by prefix (booking:, vehicle:, user:, event:). Every record carries a version that
// increments on each write so callers can make conditional updates instead of blind last-write-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionMismatch = errors.New("record version mismatch")
)

type Record struct {
	Key       string
	Value     json.RawMessage
	Version   int64
	UpdatedAt time.Time
}

type Store interface {
	Get(ctx context.Context, key string) (*Record, error)

	// Set writes value unconditionally and returns the new version.
	Set(ctx context.Context, key string, value json.RawMessage) (int64, error)

	// SetIfVersion writes value only when the stored version equals version.
	// Version 0 means "only if the key does not exist yet".
	SetIfVersion(ctx context.Context, key string, value json.RawMessage, version int64) (int64, error)

	// GetByPrefix returns every record whose key starts with prefix, in no particular order.
	GetByPrefix(ctx context.Context, prefix string) ([]Record, error)

	Del(ctx context.Context, key string) error
}
