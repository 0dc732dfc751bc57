package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

const (
	// 观看不足 5 秒不记录进度
	minProgressSeconds = 5
	// 离结尾不到 10 秒时从头播放
	resumeTailSeconds = 10
)

// VideoProgress 每个练习视频的观看进度（秒）
type VideoProgress struct {
	store localstore.Storage
	log   *logger.Logger
}

func NewVideoProgress(store localstore.Storage, log *logger.Logger) *VideoProgress {
	return &VideoProgress{store: store, log: log}
}

// All 读取全部进度；内容损坏时返回空
func (v *VideoProgress) All(ctx context.Context) map[string]float64 {
	m, _, err := v.load(ctx)
	if err != nil {
		v.log.Error("read video progress failed", "error", err)
		return map[string]float64{}
	}
	return m
}

func (v *VideoProgress) Get(ctx context.Context, exerciseID string) float64 {
	return v.All(ctx)[exerciseID]
}

// Set 只有超过 5 秒才写入，返回是否写入
func (v *VideoProgress) Set(ctx context.Context, exerciseID string, seconds float64) (bool, error) {
	if seconds <= minProgressSeconds {
		return false, nil
	}
	for attempt := 1; ; attempt++ {
		m, version, err := v.load(ctx)
		if err != nil {
			return false, err
		}
		m[exerciseID] = seconds
		raw, err := json.Marshal(m)
		if err != nil {
			return false, fmt.Errorf("encode video progress: %w", err)
		}
		_, err = v.store.SetItem(ctx, localstore.KeyVideoProgress, string(raw), version)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, localstore.ErrVersionConflict) || attempt >= maxWriteAttempts {
			return false, err
		}
	}
}

// ResumeAt 视频从哪里开始播放；已经快看完时从 0 开始
func (v *VideoProgress) ResumeAt(ctx context.Context, exerciseID string, videoSeconds float64) float64 {
	saved := v.Get(ctx, exerciseID)
	if saved > 0 && videoSeconds > 0 && saved < videoSeconds-resumeTailSeconds {
		return saved
	}
	return 0
}

func (v *VideoProgress) load(ctx context.Context) (map[string]float64, int64, error) {
	it, ok, err := v.store.GetItem(ctx, localstore.KeyVideoProgress)
	if err != nil {
		return nil, 0, err
	}
	m := map[string]float64{}
	if !ok {
		return m, 0, nil
	}
	if err := json.Unmarshal([]byte(it.Value), &m); err != nil {
		v.log.Warn("malformed video progress, treating as empty", "error", err)
		return map[string]float64{}, it.Version, nil
	}
	// 存的是 JSON null 时 Unmarshal 会把 m 置为 nil
	if m == nil {
		m = map[string]float64{}
	}
	return m, it.Version, nil
}
