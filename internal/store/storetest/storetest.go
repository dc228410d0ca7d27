// Package storetest wraps a Store with fault hooks for tests.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"fleetbooking/internal/store"
)

// Op names the Store method a Hook is called for.
type Op string

const (
	OpGet          Op = "Get"
	OpSet          Op = "Set"
	OpSetIfVersion Op = "SetIfVersion"
	OpGetByPrefix  Op = "GetByPrefix"
	OpDel          Op = "Del"
)

// ErrUnavailable is what FailKeys reports.
var ErrUnavailable = errors.New("storetest: connection refused")

// Hooked runs Hook ahead of every call. A non-nil error is returned in place of the call.
// Hooks that need to touch the data should use Inner, which is not hooked.
type Hooked struct {
	Inner store.Store
	Hook  func(ctx context.Context, op Op, key string) error
}

var _ store.Store = (*Hooked)(nil)

func Wrap(inner store.Store, hook func(ctx context.Context, op Op, key string) error) *Hooked {
	return &Hooked{Inner: inner, Hook: hook}
}

// FailKeys fails every operation on the given keys. For GetByPrefix the prefix is matched.
func FailKeys(inner store.Store, keys ...string) *Hooked {
	return Wrap(inner, func(_ context.Context, _ Op, key string) error {
		if slices.Contains(keys, key) {
			return ErrUnavailable
		}
		return nil
	})
}

// BeforeWrite runs race once, on the first conditional write to key, before that write reaches Inner.
func BeforeWrite(inner store.Store, key string, race func(ctx context.Context, inner store.Store)) *Hooked {
	var once sync.Once
	return Wrap(inner, func(ctx context.Context, op Op, k string) error {
		if op == OpSetIfVersion && k == key {
			once.Do(func() { race(ctx, inner) })
		}
		return nil
	})
}

func (h *Hooked) hook(ctx context.Context, op Op, key string) error {
	if h.Hook == nil {
		return nil
	}
	return h.Hook(ctx, op, key)
}

func (h *Hooked) Get(ctx context.Context, key string) (*store.Record, error) {
	if err := h.hook(ctx, OpGet, key); err != nil {
		return nil, err
	}
	return h.Inner.Get(ctx, key)
}

func (h *Hooked) Set(ctx context.Context, key string, value json.RawMessage) (int64, error) {
	if err := h.hook(ctx, OpSet, key); err != nil {
		return 0, err
	}
	return h.Inner.Set(ctx, key, value)
}

func (h *Hooked) SetIfVersion(ctx context.Context, key string, value json.RawMessage, version int64) (int64, error) {
	if err := h.hook(ctx, OpSetIfVersion, key); err != nil {
		return 0, err
	}
	return h.Inner.SetIfVersion(ctx, key, value, version)
}

func (h *Hooked) GetByPrefix(ctx context.Context, prefix string) ([]store.Record, error) {
	if err := h.hook(ctx, OpGetByPrefix, prefix); err != nil {
		return nil, err
	}
	return h.Inner.GetByPrefix(ctx, prefix)
}

func (h *Hooked) Del(ctx context.Context, key string) error {
	if err := h.hook(ctx, OpDel, key); err != nil {
		return err
	}
	return h.Inner.Del(ctx, key)
}
