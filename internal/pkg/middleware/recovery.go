package middleware

import (
	"net/http"
	"runtime/debug"

	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/httpx"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// Recovery 兜底：panic 记录日志后返回固定的 500，不把内部信息带给客户端
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					reqID := pkgerr.RequestIDFromContext(r.Context())
					log.Error("panic recovered",
						"panic", v,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", reqID,
						"stack", string(debug.Stack()),
					)
					httpx.WriteErr(w, http.StatusInternalServerError, "Something went wrong!", reqID)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
