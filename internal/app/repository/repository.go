package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

// Repository 单个集合上的增删改查，所有实现共用同一套错误约定：
// 找不到返回 *NotFoundError，存储不可达返回包装过的 ErrStoreUnavailable
type Repository[T any] interface {
	Ping(ctx context.Context) error
	ListByUser(ctx context.Context, userID string) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, rec *T) error
	Save(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id string) error
}

// classify 把网络层错误统一成 ErrStoreUnavailable，其余原样包装
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, pkgerr.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
