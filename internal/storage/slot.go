package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Codec converts between a typed value and its stored string form.
type Codec[T any] interface {
	Encode(v T) (string, error)
	Decode(s string) (T, error)
}

// JSONCodec stores values as JSON text.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (JSONCodec[T]) Decode(s string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}

// StringCodec stores a bare string with no quoting.
type StringCodec struct{}

func (StringCodec) Encode(v string) (string, error) { return v, nil }
func (StringCodec) Decode(s string) (string, error) { return s, nil }

// Slot is a typed accessor bound to one key.
type Slot[T any] struct {
	kv    KV
	key   string
	codec Codec[T]
}

func NewSlot[T any](kv KV, key string, codec Codec[T]) *Slot[T] {
	return &Slot[T]{kv: kv, key: key, codec: codec}
}

// NewJSONSlot is shorthand for a slot using JSONCodec.
func NewJSONSlot[T any](kv KV, key string) *Slot[T] {
	return NewSlot[T](kv, key, JSONCodec[T]{})
}

func (s *Slot[T]) Key() string { return s.key }

// Get returns the decoded value. Decode failures wrap ErrCorrupt.
func (s *Slot[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return zero, false, fmt.Errorf("storage: get %q: %w", s.key, err)
	}
	if !ok {
		return zero, false, nil
	}
	v, err := s.codec.Decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("%w: key %q: %v", ErrCorrupt, s.key, err)
	}
	return v, true, nil
}

func (s *Slot[T]) Set(ctx context.Context, v T) error {
	raw, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("storage: set %q: %w", s.key, err)
	}
	return nil
}

func (s *Slot[T]) Remove(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("storage: remove %q: %w", s.key, err)
	}
	return nil
}
