// Package outbox 本地写入后待同步到服务端的操作队列。
// 本地集合是读模型，服务端是最终存储；每次写本地的同时入队一条 Intent，由 Syncer 按顺序发送。
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Intent 一次待同步的写操作；RecordID 是本地 id
type Intent struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Op        Op              `json:"op"`
	RecordID  string          `json:"recordId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"lastError,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// 版本冲突时最多重试的次数
const maxWriteAttempts = 5

type Outbox struct {
	store localstore.Storage
	clock clock.Clock
	ids   clock.IDGenerator
	log   *logger.Logger
}

func New(store localstore.Storage, c clock.Clock, ids clock.IDGenerator, log *logger.Logger) *Outbox {
	return &Outbox{store: store, clock: c, ids: ids, log: log.With("component", "outbox")}
}

// Enqueue 追加到队尾
func (o *Outbox) Enqueue(ctx context.Context, kind string, op Op, recordID string, payload any) (Intent, error) {
	it := Intent{
		ID:        o.ids.New(),
		Kind:      kind,
		Op:        op,
		RecordID:  recordID,
		CreatedAt: o.clock.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Intent{}, fmt.Errorf("encode payload: %w", err)
		}
		it.Payload = raw
	}
	err := update(ctx, o.store, localstore.KeyOutbox, func(q []Intent) []Intent {
		return append(q, it)
	})
	if err != nil {
		return Intent{}, err
	}
	o.log.Debug("intent queued", "kind", kind, "op", op, "recordId", recordID)
	return it, nil
}

// Pending 按入队顺序返回全部未完成的 Intent
func (o *Outbox) Pending(ctx context.Context) ([]Intent, error) {
	q, _, err := load[[]Intent](ctx, o.store, localstore.KeyOutbox)
	return q, err
}

func (o *Outbox) Len(ctx context.Context) (int, error) {
	q, err := o.Pending(ctx)
	return len(q), err
}

func (o *Outbox) remove(ctx context.Context, id string) error {
	return update(ctx, o.store, localstore.KeyOutbox, func(q []Intent) []Intent {
		return slices.DeleteFunc(q, func(it Intent) bool { return it.ID == id })
	})
}

func (o *Outbox) markFailed(ctx context.Context, id string, cause error) error {
	return update(ctx, o.store, localstore.KeyOutbox, func(q []Intent) []Intent {
		for i := range q {
			if q[i].ID == id {
				q[i].Attempts++
				q[i].LastError = cause.Error()
			}
		}
		return q
	})
}

// RemoteID 本地 id 对应的服务端 id
func (o *Outbox) RemoteID(ctx context.Context, localID string) (string, bool) {
	m, _, err := load[map[string]string](ctx, o.store, localstore.KeyRemoteIDs)
	if err != nil {
		o.log.Error("read remote ids failed", "error", err)
		return "", false
	}
	id, ok := m[localID]
	return id, ok
}

func (o *Outbox) setRemoteID(ctx context.Context, localID, remoteID string) error {
	return update(ctx, o.store, localstore.KeyRemoteIDs, func(m map[string]string) map[string]string {
		m[localID] = remoteID
		return m
	})
}

func (o *Outbox) forgetRemoteID(ctx context.Context, localID string) error {
	return update(ctx, o.store, localstore.KeyRemoteIDs, func(m map[string]string) map[string]string {
		delete(m, localID)
		return m
	})
}

// load 读取一个 JSON 值；不存在或损坏时返回零值（map 会初始化）
func load[V any](ctx context.Context, store localstore.Storage, key string) (V, int64, error) {
	var v V
	it, ok, err := store.GetItem(ctx, key)
	if err != nil {
		return v, 0, err
	}
	if ok {
		if err := json.Unmarshal([]byte(it.Value), &v); err != nil {
			var zero V
			v = zero
		}
	}
	if m, isMap := any(&v).(*map[string]string); isMap && *m == nil {
		*m = map[string]string{}
	}
	return v, it.Version, nil
}

func update[V any](ctx context.Context, store localstore.Storage, key string, fn func(V) V) error {
	for attempt := 1; ; attempt++ {
		v, version, err := load[V](ctx, store, key)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(fn(v))
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		_, err = store.SetItem(ctx, key, string(raw), version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, localstore.ErrVersionConflict) || attempt >= maxWriteAttempts {
			return err
		}
	}
}

// RemoteIDs 已同步记录的本地 id 到服务端 id 的映射
func (o *Outbox) RemoteIDs(ctx context.Context) (map[string]string, error) {
	m, _, err := load[map[string]string](ctx, o.store, localstore.KeyRemoteIDs)
	return m, err
}
