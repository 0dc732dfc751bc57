package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResp 最外层中间件（Recovery、限流）返回的错误体，不暴露内部细节
type ErrorResp struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteOK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

func WriteErr(w http.ResponseWriter, status int, msg, reqID string) {
	WriteJSON(w, status, ErrorResp{Error: msg, RequestID: reqID})
}
