package records

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// Stress 本地压力记录；同时是 tracker 的离线读模型
type Stress struct {
	coll  *Collection[model.StressEntry, *model.StressEntry]
	clock clock.Clock
	loc   *time.Location
}

func NewStress(store localstore.Storage, c clock.Clock, loc *time.Location, log *logger.Logger) *Stress {
	return &Stress{
		coll:  NewCollection[model.StressEntry](store, localstore.KeyStressEntries, "Entry", c, log),
		clock: c,
		loc:   loc,
	}
}

func (s *Stress) Collection() *Collection[model.StressEntry, *model.StressEntry] { return s.coll }

func (s *Stress) All(ctx context.Context) []model.StressEntry { return s.coll.GetAll(ctx) }

func (s *Stress) Add(ctx context.Context, e model.StressEntry) (model.StressEntry, error) {
	if e.Factors == nil {
		e.Factors = []string{}
	}
	return s.coll.Add(ctx, e)
}

func (s *Stress) Update(ctx context.Context, e model.StressEntry) (model.StressEntry, error) {
	return s.coll.Update(ctx, e)
}

func (s *Stress) Delete(ctx context.Context, id string) error { return s.coll.Delete(ctx, id) }

// Streak 压力打卡没有“完成”概念，所有记录都算
func (s *Stress) Streak(ctx context.Context) int {
	var dates []string
	for _, e := range s.coll.GetAll(ctx) {
		dates = append(dates, e.Date)
	}
	return Streak(dates, s.clock.Now(), s.loc)
}

// Recent 按日期倒序取前 n 条；n <= 0 表示全部
func (s *Stress) Recent(ctx context.Context, n int) []model.StressEntry {
	return newest(s.coll.GetAll(ctx), n)
}

func (s *Stress) TotalCount(ctx context.Context) int { return len(s.coll.GetAll(ctx)) }

// AverageLevel 保留一位小数；没有记录时 ok=false
func (s *Stress) AverageLevel(ctx context.Context) (avg float64, ok bool) {
	all := s.coll.GetAll(ctx)
	if len(all) == 0 {
		return 0, false
	}
	sum := 0
	for _, e := range all {
		sum += e.Level
	}
	return math.Round(float64(sum)/float64(len(all))*10) / 10, true
}

// LastCheckIn 最近一次打卡的描述："Today at 9:05"、"Yesterday at 21:30" 或日期
func (s *Stress) LastCheckIn(ctx context.Context) (string, bool) {
	latest := newest(s.coll.GetAll(ctx), 1)
	if len(latest) == 0 {
		return "", false
	}
	e := latest[0]
	src := e.Timestamp
	if src == "" {
		src = e.Date
	}
	var at time.Time
	if t, err := time.ParseInLocation(model.DayLayout, src, s.loc); err == nil {
		at = t
	} else if t, err := model.ParseTime(src); err == nil {
		at = t.In(s.loc)
	} else {
		return "", false
	}

	today := s.clock.Now().In(s.loc)
	sameDay := func(a, b time.Time) bool { return a.Format(model.DayLayout) == b.Format(model.DayLayout) }
	switch {
	case sameDay(at, today):
		return fmt.Sprintf("Today at %d:%02d", at.Hour(), at.Minute()), true
	case sameDay(at, today.AddDate(0, 0, -1)):
		return fmt.Sprintf("Yesterday at %d:%02d", at.Hour(), at.Minute()), true
	default:
		return at.Format("1/2/2006"), true
	}
}
