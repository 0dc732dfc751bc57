package model

import (
	"slices"
	"time"

	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

// Record 三种记录共同的方法集；P 固定为 *T，便于仓库层用泛型处理
type Record[T any] interface {
	*T
	RecordID() string
	SetRecordID(id string)
	Owner() string
	// SortKey 字典序越大越新，内存仓库和本地模块按它倒序
	SortKey() string
	Touch(now time.Time)
	Validate() error
}

// StressEntry 一次压力打卡
type StressEntry struct {
	ID        string    `json:"id,omitempty" bson:"_id" gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `json:"userId,omitempty" bson:"userId" gorm:"index;not null"`
	Date      string    `json:"date" bson:"date" gorm:"not null"`
	Timestamp string    `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	Level     int       `json:"level" bson:"level" gorm:"not null"`
	Factors   []string  `json:"factors" bson:"factors" gorm:"serializer:json"`
	Journal   string    `json:"journal" bson:"journal"`
	CreatedAt time.Time `json:"createdAt,omitzero" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" bson:"updatedAt"`
}

// BreathingSession 一次呼吸练习；开始时 completed=false，完成时写入最终时长
type BreathingSession struct {
	ID           string    `json:"id,omitempty" bson:"_id" gorm:"primaryKey;type:varchar(64)"`
	UserID       string    `json:"userId,omitempty" bson:"userId" gorm:"index;not null"`
	ExerciseID   string    `json:"exerciseId" bson:"exerciseId" gorm:"not null"`
	ExerciseName string    `json:"exerciseName" bson:"exerciseName" gorm:"not null"`
	Date         string    `json:"date" bson:"date" gorm:"not null"`
	Timestamp    string    `json:"timestamp" bson:"timestamp" gorm:"not null"`
	Duration     int       `json:"duration" bson:"duration"` // 秒
	Completed    bool      `json:"completed" bson:"completed"`
	CreatedAt    time.Time `json:"createdAt,omitzero" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero" bson:"updatedAt"`
}

// Technique 冥想技巧的快照（完整目录是前端静态数据）
type Technique struct {
	ID       string `json:"id" bson:"id"`
	Title    string `json:"title" bson:"title"`
	Category string `json:"category,omitempty" bson:"category,omitempty"`
	Image    string `json:"image,omitempty" bson:"image,omitempty"`
}

// MeditationSession 一次冥想，默认 completed=true
type MeditationSession struct {
	ID          string    `json:"id,omitempty" bson:"_id" gorm:"primaryKey;type:varchar(64)"`
	UserID      string    `json:"userId,omitempty" bson:"userId" gorm:"index;not null"`
	Technique   Technique `json:"technique" bson:"technique" gorm:"embedded;embeddedPrefix:technique_"`
	StartedAt   string    `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt string    `json:"completedAt" bson:"completedAt" gorm:"not null"`
	Duration    int       `json:"duration" bson:"duration"` // 秒
	Completed   bool      `json:"completed" bson:"completed"`
	CreatedAt   time.Time `json:"createdAt,omitzero" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero" bson:"updatedAt"`
}

func (e *StressEntry) RecordID() string      { return e.ID }
func (e *StressEntry) SetRecordID(id string) { e.ID = id }
func (e *StressEntry) Owner() string         { return e.UserID }
func (e *StressEntry) SortKey() string       { return e.Date + "|" + e.Timestamp }
func (e *StressEntry) Touch(now time.Time)   { touch(&e.CreatedAt, &e.UpdatedAt, now) }

func (s *BreathingSession) RecordID() string      { return s.ID }
func (s *BreathingSession) SetRecordID(id string) { s.ID = id }
func (s *BreathingSession) Owner() string         { return s.UserID }
func (s *BreathingSession) SortKey() string       { return s.Date + "|" + s.Timestamp }
func (s *BreathingSession) Touch(now time.Time)   { touch(&s.CreatedAt, &s.UpdatedAt, now) }

func (s *MeditationSession) RecordID() string      { return s.ID }
func (s *MeditationSession) SetRecordID(id string) { s.ID = id }
func (s *MeditationSession) Owner() string         { return s.UserID }
func (s *MeditationSession) SortKey() string       { return s.CompletedAt }
func (s *MeditationSession) Touch(now time.Time)   { touch(&s.CreatedAt, &s.UpdatedAt, now) }

func touch(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Validate 对应 schema 的 required / min / max 约束
func (e *StressEntry) Validate() error {
	if missing := missingStrings(map[string]string{"userId": e.UserID, "date": e.Date}); len(missing) > 0 {
		return pkgerr.Validation("Missing required fields", missing...)
	}
	if e.Level < 1 || e.Level > 10 {
		return pkgerr.Validation("level must be an integer between 1 and 10", "level")
	}
	return checkTimes(map[string]string{"date": e.Date, "timestamp": e.Timestamp})
}

func (s *BreathingSession) Validate() error {
	missing := missingStrings(map[string]string{
		"userId":       s.UserID,
		"exerciseId":   s.ExerciseID,
		"exerciseName": s.ExerciseName,
		"date":         s.Date,
		"timestamp":    s.Timestamp,
	})
	if len(missing) > 0 {
		return pkgerr.Validation("Missing required fields", missing...)
	}
	if s.Duration < 0 {
		return pkgerr.Validation("duration must not be negative", "duration")
	}
	return checkTimes(map[string]string{"date": s.Date, "timestamp": s.Timestamp})
}

func (s *MeditationSession) Validate() error {
	missing := missingStrings(map[string]string{
		"userId":          s.UserID,
		"technique.id":    s.Technique.ID,
		"technique.title": s.Technique.Title,
		"completedAt":     s.CompletedAt,
	})
	if len(missing) > 0 {
		return pkgerr.Validation("Missing required fields", missing...)
	}
	if s.Duration < 0 {
		return pkgerr.Validation("duration must not be negative", "duration")
	}
	return checkTimes(map[string]string{"startedAt": s.StartedAt, "completedAt": s.CompletedAt})
}

func missingStrings(fields map[string]string) []string {
	var out []string
	for name, v := range fields {
		if v == "" {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func checkTimes(fields map[string]string) error {
	var bad []string
	for name, v := range fields {
		if v == "" {
			continue
		}
		if _, err := ParseTime(v); err != nil {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		slices.Sort(bad)
		return pkgerr.Validation("invalid date format", bad...)
	}
	return nil
}
