package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

// Memory 进程内仓库，用于开发环境和测试
type Memory[T any, P model.Record[T]] struct {
	mu    sync.RWMutex
	kind  model.Kind
	clock clock.Clock
	items map[string]T
	seq   map[string]int // 插入顺序，排序键相同时后插入的在前
	next  int
}

func NewMemory[T any, P model.Record[T]](kind model.Kind, c clock.Clock) *Memory[T, P] {
	return &Memory[T, P]{
		kind:  kind,
		clock: c,
		items: make(map[string]T),
		seq:   make(map[string]int),
	}
}

func (r *Memory[T, P]) Ping(context.Context) error { return nil }

func (r *Memory[T, P]) ListByUser(_ context.Context, userID string) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []T{}
	for _, rec := range r.items {
		if P(&rec).Owner() == userID {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b T) int {
		ka, kb := P(&a).SortKey(), P(&b).SortKey()
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return r.seq[P(&b).RecordID()] - r.seq[P(&a).RecordID()]
	})
	return out, nil
}

func (r *Memory[T, P]) Get(_ context.Context, id string) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return nil, pkgerr.NotFound(r.kind.Noun, id)
	}
	return &rec, nil
}

func (r *Memory[T, P]) Create(_ context.Context, rec *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := P(rec).RecordID()
	if id == "" {
		return fmt.Errorf("create %s: empty id", r.kind.Name)
	}
	if _, ok := r.items[id]; ok {
		return fmt.Errorf("create %s: duplicate id %s", r.kind.Name, id)
	}
	P(rec).Touch(r.clock.Now().UTC())
	r.items[id] = *rec
	r.next++
	r.seq[id] = r.next
	return nil
}

func (r *Memory[T, P]) Save(_ context.Context, rec *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := P(rec).RecordID()
	if _, ok := r.items[id]; !ok {
		return pkgerr.NotFound(r.kind.Noun, id)
	}
	P(rec).Touch(r.clock.Now().UTC())
	r.items[id] = *rec
	return nil
}

func (r *Memory[T, P]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return pkgerr.NotFound(r.kind.Noun, id)
	}
	delete(r.items, id)
	delete(r.seq, id)
	return nil
}
