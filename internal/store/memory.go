package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by tests and STORE_DRIVER=memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record), now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(rec)
	return &out, nil
}

func (m *Memory) Set(ctx context.Context, key string, value json.RawMessage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.records[key].Version + 1
	m.put(key, value, next)
	return next, nil
}

func (m *Memory) SetIfVersion(ctx context.Context, key string, value json.RawMessage, version int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.records[key]
	switch {
	case version == 0 && ok:
		return 0, ErrVersionMismatch
	case version != 0 && (!ok || cur.Version != version):
		return 0, ErrVersionMismatch
	}
	next := version + 1
	m.put(key, value, next)
	return next, nil
}

func (m *Memory) GetByPrefix(ctx context.Context, prefix string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for k, rec := range m.records {
		if strings.HasPrefix(k, prefix) {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

func (m *Memory) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

func (m *Memory) put(key string, value json.RawMessage, version int64) {
	m.records[key] = Record{
		Key:       key,
		Value:     append(json.RawMessage(nil), value...),
		Version:   version,
		UpdatedAt: m.now(),
	}
}

func clone(rec Record) Record {
	rec.Value = append(json.RawMessage(nil), rec.Value...)
	return rec
}
