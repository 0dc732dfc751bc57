package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/client/api"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// DrainResult 一轮同步的统计
type DrainResult struct {
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"` // 同一条记录前面有失败的，本轮不发
	Remaining int `json:"remaining"`
}

type Syncer struct {
	box    *Outbox
	client *api.Client
	log    *logger.Logger
}

func NewSyncer(box *Outbox, client *api.Client, log *logger.Logger) *Syncer {
	return &Syncer{box: box, client: client, log: log.With("component", "syncer")}
}

// Drain 按入队顺序发送；失败的 Intent 留在队列里，
// 并且同一条记录后面的 Intent 本轮都跳过，保证同一记录的操作顺序
func (s *Syncer) Drain(ctx context.Context) (DrainResult, error) {
	var res DrainResult
	queue, err := s.box.Pending(ctx)
	if err != nil {
		return res, err
	}

	blocked := map[string]bool{}
	for _, it := range queue {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		key := it.Kind + "/" + it.RecordID
		if blocked[key] {
			res.Skipped++
			continue
		}
		if err := s.send(ctx, it); err != nil {
			s.log.Warn("sync failed", "kind", it.Kind, "op", it.Op, "recordId", it.RecordID, "error", err)
			blocked[key] = true
			res.Failed++
			if err := s.box.markFailed(ctx, it.ID, err); err != nil {
				return res, err
			}
			continue
		}
		if err := s.box.remove(ctx, it.ID); err != nil {
			return res, err
		}
		res.Sent++
	}

	res.Remaining, err = s.box.Len(ctx)
	return res, err
}

// Run 每隔 interval 同步一次，直到 ctx 取消
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := s.Drain(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("drain failed", "error", err)
		} else if res.Sent > 0 || res.Failed > 0 {
			s.log.Info("outbox drained", "sent", res.Sent, "failed", res.Failed, "remaining", res.Remaining)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Syncer) send(ctx context.Context, it Intent) error {
	path := "/api/" + it.Kind
	switch it.Op {
	case OpCreate:
		payload, err := s.createPayload(ctx, it.Payload)
		if err != nil {
			return err
		}
		var out struct {
			ID string `json:"id"`
		}
		if err := s.client.Do(ctx, http.MethodPost, path, payload, &out); err != nil {
			return err
		}
		if out.ID == "" {
			return fmt.Errorf("create %s: server returned no id", it.Kind)
		}
		return s.box.setRemoteID(ctx, it.RecordID, out.ID)

	case OpUpdate:
		var payload map[string]any
		if err := json.Unmarshal(it.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		delete(payload, "id")
		return s.client.Do(ctx, http.MethodPut, path+"/"+s.remote(ctx, it.RecordID), payload, nil)

	case OpDelete:
		err := s.client.Do(ctx, http.MethodDelete, path+"/"+s.remote(ctx, it.RecordID), nil, nil)
		var se *api.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			// 服务端已经没有了，视为成功
			err = nil
		}
		if err != nil {
			return err
		}
		return s.box.forgetRemoteID(ctx, it.RecordID)
	}
	return fmt.Errorf("unknown op %q", it.Op)
}

// remote 没有映射时说明记录本来就来自服务端，直接用原 id
func (s *Syncer) remote(ctx context.Context, localID string) string {
	if id, ok := s.box.RemoteID(ctx, localID); ok {
		return id
	}
	return localID
}

func (s *Syncer) createPayload(ctx context.Context, raw json.RawMessage) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	delete(payload, "id")
	userID, err := s.client.UserID(ctx)
	if err != nil {
		return nil, err
	}
	payload["userId"] = userID
	return payload, nil
}
