// Package tracker 把本地读模型、outbox 和 API 客户端组合在一起：
// 写操作先落本地再入队，由 outbox.Syncer 异步推到服务端；读操作优先服务端，失败用本地。
package tracker

import (
	"context"
	"net/http"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/api"
	"github.com/mindflow-app/mindflow-BE/internal/client/outbox"
	"github.com/mindflow-app/mindflow-BE/internal/client/records"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// Source 列表数据的来源
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

type Tracker[T any, P model.Record[T]] struct {
	kind   model.Kind
	coll   *records.Collection[T, P]
	add    func(context.Context, T) (T, error)
	box    *outbox.Outbox
	client *api.Client
	log    *logger.Logger
}

func newTracker[T any, P model.Record[T]](kind model.Kind, coll *records.Collection[T, P], add func(context.Context, T) (T, error), box *outbox.Outbox, client *api.Client, log *logger.Logger) *Tracker[T, P] {
	if add == nil {
		add = coll.Add
	}
	return &Tracker[T, P]{
		kind:   kind,
		coll:   coll,
		add:    add,
		box:    box,
		client: client,
		log:    log.With("component", "tracker", "kind", kind.Name),
	}
}

func NewStress(s *records.Stress, box *outbox.Outbox, client *api.Client, log *logger.Logger) *Tracker[model.StressEntry, *model.StressEntry] {
	return newTracker(model.Stress, s.Collection(), s.Add, box, client, log)
}

func NewBreathing(b *records.Breathing, box *outbox.Outbox, client *api.Client, log *logger.Logger) *Tracker[model.BreathingSession, *model.BreathingSession] {
	return newTracker(model.Breathing, b.Collection(), b.Add, box, client, log)
}

func NewMeditation(m *records.Meditation, box *outbox.Outbox, client *api.Client, log *logger.Logger) *Tracker[model.MeditationSession, *model.MeditationSession] {
	return newTracker(model.Meditation, m.Collection(), m.Add, box, client, log)
}

func (t *Tracker[T, P]) Kind() model.Kind { return t.kind }

// Add 写本地并入队 create
func (t *Tracker[T, P]) Add(ctx context.Context, rec T) (T, error) {
	saved, err := t.add(ctx, rec)
	if err != nil {
		return saved, err
	}
	return saved, t.Track(ctx, outbox.OpCreate, saved)
}

// Update 本地不存在时返回 NotFoundError，不入队
func (t *Tracker[T, P]) Update(ctx context.Context, rec T) (T, error) {
	saved, err := t.coll.Update(ctx, rec)
	if err != nil {
		return saved, err
	}
	return saved, t.Track(ctx, outbox.OpUpdate, saved)
}

// Delete 本地没有也会入队，记录可能只存在于服务端
func (t *Tracker[T, P]) Delete(ctx context.Context, id string) error {
	if err := t.coll.Delete(ctx, id); err != nil {
		return err
	}
	_, err := t.box.Enqueue(ctx, t.kind.Name, outbox.OpDelete, id, nil)
	return err
}

// Track 为已经写入本地的记录入队，供 Breathing.Start 这类自带写入的操作使用
func (t *Tracker[T, P]) Track(ctx context.Context, op outbox.Op, rec T) error {
	_, err := t.box.Enqueue(ctx, t.kind.Name, op, P(&rec).RecordID(), rec)
	return err
}

// Entries 服务端列表；请求失败或服务端降级时返回本地集合
func (t *Tracker[T, P]) Entries(ctx context.Context) ([]T, Source) {
	var out []T
	err := t.client.Do(ctx, http.MethodGet, "/api/"+t.kind.Name, nil, &out)
	if err != nil {
		t.log.Warn("remote list failed, using local records", "error", err)
		return t.coll.GetAll(ctx), SourceLocal
	}
	if out == nil {
		out = []T{}
	}
	return out, SourceRemote
}
