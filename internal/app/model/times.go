package model

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	DayLayout,
}

// ParseTime 接受前端写入的两种格式：YYYY-MM-DD 与 ISO 8601 时间戳
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// DayKey 返回记录所属的日历日（YYYY-MM-DD）
// 纯日期字符串原样返回；带时刻的时间戳先换算到 loc 再取日期
func DayKey(s string, loc *time.Location) (string, bool) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t.Format(DayLayout), true
	}
	t, err := ParseTime(s)
	if err != nil {
		return "", false
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DayLayout), true
}
