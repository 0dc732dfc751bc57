package records

import (
	"context"
	"slices"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// Meditation 本地冥想记录
type Meditation struct {
	coll  *Collection[model.MeditationSession, *model.MeditationSession]
	clock clock.Clock
	loc   *time.Location
}

func NewMeditation(store localstore.Storage, c clock.Clock, loc *time.Location, log *logger.Logger) *Meditation {
	return &Meditation{
		coll:  NewCollection[model.MeditationSession](store, localstore.KeyMeditationSessions, "Session", c, log),
		clock: c,
		loc:   loc,
	}
}

func (m *Meditation) Collection() *Collection[model.MeditationSession, *model.MeditationSession] {
	return m.coll
}

func (m *Meditation) All(ctx context.Context) []model.MeditationSession { return m.coll.GetAll(ctx) }

func (m *Meditation) Add(ctx context.Context, s model.MeditationSession) (model.MeditationSession, error) {
	return m.coll.Add(ctx, s)
}

func (m *Meditation) Delete(ctx context.Context, id string) error { return m.coll.Delete(ctx, id) }

func (m *Meditation) Clear(ctx context.Context) error { return m.coll.Clear(ctx) }

// SaveCompleted 记录一次已完成的冥想，缺省的技巧字段用默认值补齐
func (m *Meditation) SaveCompleted(ctx context.Context, t model.Technique, seconds int) (model.MeditationSession, error) {
	if t.ID == "" {
		t.ID = "unknown"
	}
	if t.Title == "" {
		t.Title = "Meditation"
	}
	if t.Category == "" {
		t.Category = "Focus"
	}
	if t.Image == "" {
		t.Image = "/images/meditation/default.jpg"
	}
	now := m.clock.Now().UTC()
	return m.coll.Add(ctx, model.MeditationSession{
		Technique:   t,
		StartedAt:   now.Add(-time.Duration(seconds) * time.Second).Format(TimestampLayout),
		CompletedAt: now.Format(TimestampLayout),
		Duration:    seconds,
		Completed:   true,
	})
}

// Recent 按完成时间倒序取前 n 条
func (m *Meditation) Recent(ctx context.Context, n int) []model.MeditationSession {
	return newest(m.coll.GetAll(ctx), n)
}

func (m *Meditation) TotalCount(ctx context.Context) int { return len(m.coll.GetAll(ctx)) }

func (m *Meditation) completed(ctx context.Context) []model.MeditationSession {
	return slices.DeleteFunc(m.coll.GetAll(ctx), func(s model.MeditationSession) bool { return !s.Completed })
}

func (m *Meditation) Streak(ctx context.Context) int {
	var dates []string
	for _, s := range m.completed(ctx) {
		dates = append(dates, s.CompletedAt)
	}
	return Streak(dates, m.clock.Now(), m.loc)
}

func (m *Meditation) TotalMinutes(ctx context.Context) int {
	var secs []int
	for _, s := range m.completed(ctx) {
		secs = append(secs, s.Duration)
	}
	return TotalMinutes(secs)
}

func (m *Meditation) MostPracticed(ctx context.Context) *Practiced {
	var items []Practiced
	for _, s := range m.completed(ctx) {
		items = append(items, Practiced{ID: s.Technique.ID, Name: s.Technique.Title})
	}
	return MostPracticed(items)
}
