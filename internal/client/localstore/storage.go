// Package localstore 客户端本地的键值存储，对应浏览器里的 localStorage。
// 每个 key 带一个递增版本号，写入时校验版本，避免两个进程互相覆盖。
package localstore

import (
	"context"

	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

// 固定的存储 key
const (
	KeyStressEntries      = "mindflow_stress_entries"
	KeyBreathingSessions  = "mindflow_breathing_sessions"
	KeyMeditationSessions = "mindflow_meditation_sessions"
	KeyUserID             = "mindflow_user_id"
	KeyMigrationCompleted = "mindflow_data_migration_completed"
	KeyVideoProgress      = "mindflow_video_progress"
	KeyOutbox             = "mindflow_outbox"
	KeyRemoteIDs          = "mindflow_remote_ids"
)

// AnyVersion 不校验版本，直接覆盖
const AnyVersion int64 = -1

var ErrVersionConflict = pkgerr.ErrVersionConflict

// Item 一个 key 当前的值和版本；版本从 1 开始
type Item struct {
	Value   string
	Version int64
}

// Storage 版本化的键值存储
//
// SetItem 的 expectVersion：AnyVersion 无条件写；0 表示 key 必须不存在；
// 其他值必须等于当前版本，否则返回 ErrVersionConflict。成功时返回新版本号。
type Storage interface {
	GetItem(ctx context.Context, key string) (Item, bool, error)
	SetItem(ctx context.Context, key, value string, expectVersion int64) (int64, error)
	RemoveItem(ctx context.Context, key string) error
	Close() error
}
