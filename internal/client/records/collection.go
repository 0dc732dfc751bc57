// Package records 本地记录集合：每种记录整体序列化成一个 JSON 数组存在一个 key 下。
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// 版本冲突时最多重试的次数
const maxWriteAttempts = 5

// Collection 一个 key 下的记录数组
// 写操作是整体读-改-写，靠版本号检测并发写入，冲突时重读重试
type Collection[T any, P model.Record[T]] struct {
	store localstore.Storage
	key   string
	noun  string
	clock clock.Clock
	log   *logger.Logger
}

func NewCollection[T any, P model.Record[T]](store localstore.Storage, key, noun string, c clock.Clock, log *logger.Logger) *Collection[T, P] {
	return &Collection[T, P]{store: store, key: key, noun: noun, clock: c, log: log.With("key", key)}
}

// GetAll 读取全部记录；不存在或内容损坏都返回空集合，只记日志
func (c *Collection[T, P]) GetAll(ctx context.Context) []T {
	recs, _, err := c.load(ctx)
	if err != nil {
		c.log.Error("read collection failed", "error", err)
		return []T{}
	}
	return recs
}

// Add 生成本地 id 后追加
func (c *Collection[T, P]) Add(ctx context.Context, rec T) (T, error) {
	P(&rec).SetRecordID(NewLocalID(c.clock.Now()))
	err := c.mutate(ctx, func(all []T) ([]T, error) {
		return append(all, rec), nil
	})
	return rec, err
}

// Update 按 id 原位替换；找不到返回 NotFoundError
func (c *Collection[T, P]) Update(ctx context.Context, rec T) (T, error) {
	id := P(&rec).RecordID()
	err := c.mutate(ctx, func(all []T) ([]T, error) {
		i := slices.IndexFunc(all, func(r T) bool { return P(&r).RecordID() == id })
		if i < 0 {
			return nil, pkgerr.NotFound(c.noun, id)
		}
		all[i] = rec
		return all, nil
	})
	return rec, err
}

// Delete 删除匹配的记录；没有匹配也照常写回
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, func(all []T) ([]T, error) {
		return slices.DeleteFunc(all, func(r T) bool { return P(&r).RecordID() == id }), nil
	})
}

// Clear 删除整个 key
func (c *Collection[T, P]) Clear(ctx context.Context) error {
	return c.store.RemoveItem(ctx, c.key)
}

func (c *Collection[T, P]) load(ctx context.Context) ([]T, int64, error) {
	it, ok, err := c.store.GetItem(ctx, c.key)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return []T{}, 0, nil
	}
	var recs []T
	if err := json.Unmarshal([]byte(it.Value), &recs); err != nil {
		c.log.Warn("malformed collection, treating as empty", "error", err)
		return []T{}, it.Version, nil
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, it.Version, nil
}

func (c *Collection[T, P]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	for attempt := 1; ; attempt++ {
		all, version, err := c.load(ctx)
		if err != nil {
			return err
		}
		next, err := fn(all)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.key, err)
		}
		_, err = c.store.SetItem(ctx, c.key, string(raw), version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, localstore.ErrVersionConflict) || attempt >= maxWriteAttempts {
			return err
		}
		c.log.Debug("version conflict, retrying", "attempt", attempt)
	}
}

// NewLocalID 毫秒时间戳的 36 进制加 5 位随机字符
func NewLocalID(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + string(suffix)
}
