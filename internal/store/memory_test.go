package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetIfVersion(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	v, err := m.SetIfVersion(ctx, "booking:1", json.RawMessage(`{"a":1}`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = m.SetIfVersion(ctx, "booking:1", json.RawMessage(`{"a":2}`), 0)
	assert.ErrorIs(t, err, ErrVersionMismatch, "create-only write must fail when key exists")

	v, err = m.SetIfVersion(ctx, "booking:1", json.RawMessage(`{"a":2}`), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = m.SetIfVersion(ctx, "booking:1", json.RawMessage(`{"a":3}`), 1)
	assert.ErrorIs(t, err, ErrVersionMismatch, "stale version must lose")

	rec, err := m.Get(ctx, "booking:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(rec.Value))
}

func TestMemory_GetByPrefixAndDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, _ = m.Set(ctx, "booking:1", json.RawMessage(`{}`))
	_, _ = m.Set(ctx, "booking:2", json.RawMessage(`{}`))
	_, _ = m.Set(ctx, "vehicle:1", json.RawMessage(`{}`))

	recs, err := m.GetByPrefix(ctx, "booking:")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	require.NoError(t, m.Del(ctx, "booking:1"))
	_, err = m.Get(ctx, "booking:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_SetBumpsVersion(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	v1, _ := m.Set(ctx, "user:1", json.RawMessage(`{}`))
	v2, _ := m.Set(ctx, "user:1", json.RawMessage(`{}`))
	assert.Equal(t, v1+1, v2)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `event:a\_b\%`, escapeLike("event:a_b%"))
}
