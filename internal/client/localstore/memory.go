package localstore

import (
	"context"
	"sync"
)

// Memory 进程内实现，测试用
type Memory struct {
	mu    sync.Mutex
	items map[string]Item
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]Item)}
}

func (m *Memory) GetItem(_ context.Context, key string) (Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	return it, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string, expectVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.items[key]
	if expectVersion != AnyVersion && expectVersion != cur.Version {
		return 0, ErrVersionConflict
	}
	next := Item{Value: value, Version: 1}
	if ok {
		next.Version = cur.Version + 1
	}
	m.items[key] = next
	return next.Version, nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Close() error { return nil }
