// Package storage is the flat key-value store the core persists into. Every
// value is a string; typed access goes through Slot.
package storage

import (
	"context"
	"errors"
)

// Keys of the persisted schema. These three slots are the on-disk format and
// must stay readable by earlier installs.
const (
	KeyEmployees          = "employees"
	KeyRememberedUser     = "rememberedUser"
	KeyRememberedUsername = "rememberedUsername"
)

var (
	// ErrCorrupt wraps any failure to decode a stored value.
	ErrCorrupt = errors.New("storage: corrupt value")
	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("storage: closed")
)

// KV is a whole-value string store. Get reports ok=false for absent keys;
// Remove of an absent key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
