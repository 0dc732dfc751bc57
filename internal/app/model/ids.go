package model

import (
	"strconv"
	"time"
)

// NewUserID 生成匿名用户 id：user_ + 毫秒时间戳的 36 进制
func NewUserID(now time.Time) string {
	return "user_" + strconv.FormatInt(now.UnixMilli(), 36)
}
