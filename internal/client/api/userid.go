package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// UserIDs 匿名用户 id，第一次使用时生成并持久化，之后一直不变
type UserIDs struct {
	store localstore.Storage
	clock clock.Clock
	log   *logger.Logger
}

func NewUserIDs(store localstore.Storage, c clock.Clock, log *logger.Logger) *UserIDs {
	return &UserIDs{store: store, clock: c, log: log}
}

func (u *UserIDs) ID(ctx context.Context) (string, error) {
	it, ok, err := u.store.GetItem(ctx, localstore.KeyUserID)
	if err != nil {
		return "", fmt.Errorf("read user id: %w", err)
	}
	if ok && it.Value != "" {
		return it.Value, nil
	}

	id := model.NewUserID(u.clock.Now())
	expect := int64(0)
	if ok {
		expect = it.Version
	}
	_, err = u.store.SetItem(ctx, localstore.KeyUserID, id, expect)
	if errors.Is(err, localstore.ErrVersionConflict) {
		// 另一个进程先生成了，用它的
		return u.ID(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("save user id: %w", err)
	}
	u.log.Info("created new user id", "userId", id)
	return id, nil
}
