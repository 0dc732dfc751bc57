package repository

import (
	"context"

	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

// Unavailable 未配置后端存储时使用，所有操作都返回 ErrStoreUnavailable，
// 服务层据此走降级逻辑
type Unavailable[T any] struct{}

func (Unavailable[T]) Ping(context.Context) error { return pkgerr.ErrStoreUnavailable }

func (Unavailable[T]) ListByUser(context.Context, string) ([]T, error) {
	return nil, pkgerr.ErrStoreUnavailable
}

func (Unavailable[T]) Get(context.Context, string) (*T, error) {
	return nil, pkgerr.ErrStoreUnavailable
}

func (Unavailable[T]) Create(context.Context, *T) error { return pkgerr.ErrStoreUnavailable }

func (Unavailable[T]) Save(context.Context, *T) error { return pkgerr.ErrStoreUnavailable }

func (Unavailable[T]) Delete(context.Context, string) error { return pkgerr.ErrStoreUnavailable }
