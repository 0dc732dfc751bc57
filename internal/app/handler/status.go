package handler

import (
	"net/http"

	"github.com/mindflow-app/mindflow-BE/internal/app/service"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/httpx"
)

type StatusHandler struct {
	svc *service.StatusService
}

// NewStatusHandler GET /api/status
func NewStatusHandler(svc *service.StatusService) http.Handler {
	return &StatusHandler{svc: svc}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.WriteOK(w, h.svc.Status(r.Context()))
}

type rootResp struct {
	Message          string `json:"message"`
	MongoDBConnected bool   `json:"mongoDBConnected"`
}

type RootHandler struct {
	svc *service.StatusService
}

// NewRootHandler GET /
func NewRootHandler(svc *service.StatusService) http.Handler {
	return &RootHandler{svc: svc}
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.WriteOK(w, rootResp{
		Message:          "Mindflow API is running",
		MongoDBConnected: h.svc.Connected(r.Context()),
	})
}
