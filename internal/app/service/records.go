package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/app/repository"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// Reply 写回客户端的 JSON 体；Degraded 表示存储不可达、走了降级分支
type Reply struct {
	Body     any
	Degraded bool
}

// Deleted 删除成功（或降级）时的响应体
type Deleted struct {
	Msg string `json:"msg"`
	ID  string `json:"id"`
}

// Records 一种记录资源的业务逻辑
// 每个请求先 Ping 一次存储：连不上就降级，不返回错误
type Records[T any, P model.Record[T]] struct {
	kind        model.Kind
	repo        repository.Repository[T]
	clock       clock.Clock
	ids         clock.IDGenerator
	log         *logger.Logger
	pingTimeout time.Duration
}

func NewRecords[T any, P model.Record[T]](kind model.Kind, repo repository.Repository[T], c clock.Clock, ids clock.IDGenerator, log *logger.Logger, pingTimeout time.Duration) *Records[T, P] {
	if pingTimeout <= 0 {
		pingTimeout = 2 * time.Second
	}
	return &Records[T, P]{
		kind:        kind,
		repo:        repo,
		clock:       c,
		ids:         ids,
		log:         log.With("kind", kind.Name),
		pingTimeout: pingTimeout,
	}
}

func (s *Records[T, P]) Kind() model.Kind { return s.kind }

// List 返回该用户的全部记录，最新的在前
func (s *Records[T, P]) List(ctx context.Context, userID string) (Reply, error) {
	if userID == "" {
		return Reply{}, pkgerr.Validation("User ID is required", "userId")
	}
	if !s.available(ctx) {
		return Reply{Body: []T{}, Degraded: true}, nil
	}
	recs, err := s.repo.ListByUser(ctx, userID)
	if errors.Is(err, pkgerr.ErrStoreUnavailable) {
		s.log.Warn("list failed, returning empty", "error", err)
		return Reply{Body: []T{}, Degraded: true}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	if recs == nil {
		recs = []T{}
	}
	return Reply{Body: recs}, nil
}

// Create 校验必填字段后入库；存储不可达时原样回显并附上 mock id
func (s *Records[T, P]) Create(ctx context.Context, body map[string]any) (Reply, error) {
	if missing := s.missing(body); len(missing) > 0 {
		return Reply{}, pkgerr.Validation("Missing required fields", missing...)
	}

	fields := maps.Clone(body)
	for k, v := range s.kind.Defaults {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	delete(fields, "id")
	delete(fields, "_id")
	delete(fields, "createdAt")
	delete(fields, "updatedAt")

	rec, err := decode[T](fields)
	if err != nil {
		return Reply{}, err
	}
	if err := P(rec).Validate(); err != nil {
		return Reply{}, err
	}

	if !s.available(ctx) {
		return s.echoCreate(body), nil
	}
	P(rec).SetRecordID(s.ids.New())
	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, pkgerr.ErrStoreUnavailable) {
			s.log.Warn("create failed, echoing payload", "error", err)
			return s.echoCreate(body), nil
		}
		return Reply{}, err
	}
	s.log.Debug("record created", "id", P(rec).RecordID(), "userId", P(rec).Owner())
	return Reply{Body: rec}, nil
}

// Update 把请求体浅合并到已有记录上；id 不可修改
func (s *Records[T, P]) Update(ctx context.Context, id string, body map[string]any) (Reply, error) {
	if !s.available(ctx) {
		return s.echo(id, body), nil
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerr.ErrStoreUnavailable) {
			return s.echo(id, body), nil
		}
		return Reply{}, err
	}

	merged, err := toMap(cur)
	if err != nil {
		return Reply{}, err
	}
	for k, v := range body {
		switch k {
		case "id", "_id", "createdAt", "updatedAt":
			continue
		}
		merged[k] = v
	}
	rec, err := decode[T](merged)
	if err != nil {
		return Reply{}, err
	}
	P(rec).SetRecordID(id)
	if err := P(rec).Validate(); err != nil {
		return Reply{}, err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		if errors.Is(err, pkgerr.ErrStoreUnavailable) {
			return s.echo(id, body), nil
		}
		return Reply{}, err
	}
	return Reply{Body: rec}, nil
}

// Delete 删除单条记录；降级时同样返回成功
func (s *Records[T, P]) Delete(ctx context.Context, id string) (Reply, error) {
	ok := Reply{Body: Deleted{Msg: s.kind.Noun + " deleted", ID: id}}
	if !s.available(ctx) {
		ok.Degraded = true
		return ok, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerr.ErrStoreUnavailable) {
			ok.Degraded = true
			return ok, nil
		}
		return Reply{}, err
	}
	return ok, nil
}

func (s *Records[T, P]) available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		s.log.Warn("store unavailable, degrading", "error", err)
		return false
	}
	return true
}

func (s *Records[T, P]) echoCreate(body map[string]any) Reply {
	out := maps.Clone(body)
	out["id"] = fmt.Sprintf("mock-id-%d", s.clock.Now().UnixMilli())
	return Reply{Body: out, Degraded: true}
}

func (s *Records[T, P]) echo(id string, body map[string]any) Reply {
	out := maps.Clone(body)
	if out == nil {
		out = map[string]any{}
	}
	out["id"] = id
	return Reply{Body: out, Degraded: true}
}

// missing 字段不存在、为 null 或为空字符串都算缺失；数字 0 不算
func (s *Records[T, P]) missing(body map[string]any) []string {
	var out []string
	for _, f := range s.kind.Required {
		v, ok := body[f]
		if !ok || v == nil {
			out = append(out, f)
			continue
		}
		if str, isStr := v.(string); isStr && str == "" {
			out = append(out, f)
		}
	}
	return out
}

func decode[T any](fields map[string]any) (*T, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, pkgerr.Validation("Invalid field type", typeErr.Field)
		}
		return nil, pkgerr.Validation("Invalid request body")
	}
	return &rec, nil
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
