package service

import (
	"context"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/database"
)

// Status /api/status 的响应体
type Status struct {
	Server            string `json:"server"`
	MongoDBConnection string `json:"mongoDbConnection"`
}

type StatusService struct {
	store   database.Pinger
	timeout time.Duration
}

func NewStatusService(store database.Pinger, timeout time.Duration) *StatusService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &StatusService{store: store, timeout: timeout}
}

// Connected 每次调用都重新 Ping，不缓存结果
func (s *StatusService) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Ping(ctx) == nil
}

func (s *StatusService) Status(ctx context.Context) Status {
	st := Status{Server: "running", MongoDBConnection: "disconnected"}
	if s.Connected(ctx) {
		st.MongoDBConnection = "connected"
	}
	return st
}
