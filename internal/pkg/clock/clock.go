package clock

import (
	"time"

	"github.com/google/uuid"
)

// Clock 抽象取时间，方便测试里固定“今天”
type Clock interface {
	Now() time.Time
}

// Real 返回系统当前时间
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// IDGenerator 抽象 id 生成
type IDGenerator interface {
	New() string
}

// UUID 生成随机 UUID
type UUID struct{}

func (UUID) New() string { return uuid.NewString() }
