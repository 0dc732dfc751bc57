package records

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// TimestampLayout 本地记录里时间戳统一用毫秒精度的 UTC ISO 格式
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Breathing 本地呼吸练习记录
type Breathing struct {
	coll  *Collection[model.BreathingSession, *model.BreathingSession]
	clock clock.Clock
	loc   *time.Location
}

func NewBreathing(store localstore.Storage, c clock.Clock, loc *time.Location, log *logger.Logger) *Breathing {
	return &Breathing{
		coll:  NewCollection[model.BreathingSession](store, localstore.KeyBreathingSessions, "Session", c, log),
		clock: c,
		loc:   loc,
	}
}

func (b *Breathing) Collection() *Collection[model.BreathingSession, *model.BreathingSession] {
	return b.coll
}

func (b *Breathing) All(ctx context.Context) []model.BreathingSession { return b.coll.GetAll(ctx) }

func (b *Breathing) Add(ctx context.Context, s model.BreathingSession) (model.BreathingSession, error) {
	return b.coll.Add(ctx, s)
}

func (b *Breathing) Update(ctx context.Context, s model.BreathingSession) (model.BreathingSession, error) {
	return b.coll.Update(ctx, s)
}

func (b *Breathing) Delete(ctx context.Context, id string) error { return b.coll.Delete(ctx, id) }

// Start 记录一次刚开始的练习（completed=false）
func (b *Breathing) Start(ctx context.Context, exerciseID, exerciseName string) (model.BreathingSession, error) {
	now := b.clock.Now()
	return b.coll.Add(ctx, model.BreathingSession{
		ExerciseID:   exerciseID,
		ExerciseName: exerciseName,
		Date:         now.In(b.loc).Format(model.DayLayout),
		Timestamp:    now.UTC().Format(TimestampLayout),
	})
}

// Complete 写入最终时长并标记完成
func (b *Breathing) Complete(ctx context.Context, id string, seconds int) (model.BreathingSession, error) {
	all := b.coll.GetAll(ctx)
	i := slices.IndexFunc(all, func(s model.BreathingSession) bool { return s.ID == id })
	if i < 0 {
		return model.BreathingSession{}, pkgerr.NotFound("Session", id)
	}
	s := all[i]
	s.Duration = seconds
	s.Completed = true
	return b.coll.Update(ctx, s)
}

// ByDateRange 日期落在 [start, end] 内的记录（按日历日比较，含两端）
func (b *Breathing) ByDateRange(ctx context.Context, start, end time.Time) []model.BreathingSession {
	from := start.In(b.loc).Format(model.DayLayout)
	to := end.In(b.loc).Format(model.DayLayout)
	out := []model.BreathingSession{}
	for _, s := range b.coll.GetAll(ctx) {
		day, ok := model.DayKey(s.Date, b.loc)
		if ok && day >= from && day <= to {
			out = append(out, s)
		}
	}
	return out
}

// Recent 最新的 n 条，先按日期再按时间戳倒序
func (b *Breathing) Recent(ctx context.Context, n int) []model.BreathingSession {
	return newest(b.coll.GetAll(ctx), n)
}

func (b *Breathing) completed(ctx context.Context) []model.BreathingSession {
	return slices.DeleteFunc(b.coll.GetAll(ctx), func(s model.BreathingSession) bool { return !s.Completed })
}

func (b *Breathing) TotalCompleted(ctx context.Context) int { return len(b.completed(ctx)) }

func (b *Breathing) Streak(ctx context.Context) int {
	var dates []string
	for _, s := range b.completed(ctx) {
		dates = append(dates, s.Date)
	}
	return Streak(dates, b.clock.Now(), b.loc)
}

func (b *Breathing) TotalMinutes(ctx context.Context) int {
	var secs []int
	for _, s := range b.completed(ctx) {
		secs = append(secs, s.Duration)
	}
	return TotalMinutes(secs)
}

func (b *Breathing) MostPracticed(ctx context.Context) *Practiced {
	var items []Practiced
	for _, s := range b.completed(ctx) {
		items = append(items, Practiced{ID: s.ExerciseID, Name: s.ExerciseName})
	}
	return MostPracticed(items)
}

// newest 按 SortKey 倒序取前 n 条；n <= 0 表示全部
func newest[T any, P model.Record[T]](recs []T, n int) []T {
	slices.SortStableFunc(recs, func(a, b T) int {
		return strings.Compare(P(&b).SortKey(), P(&a).SortKey())
	})
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}
