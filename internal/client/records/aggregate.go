package records

import (
	"math"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
)

// 连续天数最多往回数一年
const maxStreakDays = 365

// Streak 从今天往回数连续有记录的天数；今天没有记录返回 0
// dates 里无法解析的值直接跳过
func Streak(dates []string, now time.Time, loc *time.Location) int {
	days := make(map[string]bool, len(dates))
	for _, d := range dates {
		if key, ok := model.DayKey(d, loc); ok {
			days[key] = true
		}
	}
	day := now.In(loc)
	if !days[day.Format(model.DayLayout)] {
		return 0
	}
	streak := 1
	for i := 1; i <= maxStreakDays; i++ {
		day = day.AddDate(0, 0, -1)
		if !days[day.Format(model.DayLayout)] {
			break
		}
		streak++
	}
	return streak
}

// TotalMinutes 秒数求和后四舍五入成分钟
func TotalMinutes(seconds []int) int {
	total := 0
	for _, s := range seconds {
		total += s
	}
	return int(math.Round(float64(total) / 60))
}

// Practiced 练习次数最多的项目
type Practiced struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// MostPracticed 次数相同取 id 字典序最小的；没有数据返回 nil
func MostPracticed(items []Practiced) *Practiced {
	counts := map[string]*Practiced{}
	for _, it := range items {
		p, ok := counts[it.ID]
		if !ok {
			p = &Practiced{ID: it.ID, Name: it.Name}
			counts[it.ID] = p
		}
		p.Count++
	}
	var best *Practiced
	for _, p := range counts {
		if best == nil || p.Count > best.Count || (p.Count == best.Count && p.ID < best.ID) {
			best = p
		}
	}
	return best
}
