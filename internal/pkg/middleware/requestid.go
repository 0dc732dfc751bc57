package middleware

import (
	"net/http"

	"github.com/google/uuid"

	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配 id，沿用客户端传来的值
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(pkgerr.WithRequestID(r.Context(), id)))
	})
}
