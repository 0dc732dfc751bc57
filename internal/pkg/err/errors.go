package err

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrStoreUnavailable 后端存储不可达；REST 层据此走降级（空列表 / mock id）
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrVersionConflict 本地存储写入时版本号不匹配（其他进程先写了）
	ErrVersionConflict = errors.New("version conflict")
)

// ValidationError 必填字段缺失或取值越界
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Fields, ", "))
}

// Validation 构造 ValidationError
func Validation(msg string, fields ...string) *ValidationError {
	return &ValidationError{Msg: msg, Fields: fields}
}

// NotFoundError id 找不到对应记录
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func IsNotFound(e error) bool {
	var nf *NotFoundError
	return errors.As(e, &nf)
}

func IsValidation(e error) bool {
	var ve *ValidationError
	return errors.As(e, &ve)
}

// HTTPStatus 把错误映射为 HTTP 状态码，未知错误一律 500
func HTTPStatus(e error) int {
	switch {
	case e == nil:
		return http.StatusOK
	case IsValidation(e):
		return http.StatusBadRequest
	case IsNotFound(e):
		return http.StatusNotFound
	case errors.Is(e, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 用于请求 ID
type ctxKey string

const requestIDKey ctxKey = "request_id"

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(requestIDKey).(string); ok {
		return s
	}
	return ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
