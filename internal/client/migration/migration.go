// Package migration 把本地已有的记录一次性上传到服务端。
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/api"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

const DefaultBatchSize = 10

// LocalKey 每种记录在本地存储里的 key
var LocalKey = map[string]string{
	model.Stress.Name:     localstore.KeyStressEntries,
	model.Breathing.Name:  localstore.KeyBreathingSessions,
	model.Meditation.Name: localstore.KeyMeditationSessions,
}

// KindReport 单种记录的迁移结果
type KindReport struct {
	Kind      string `json:"kind" yaml:"kind"`
	Attempted int    `json:"attempted" yaml:"attempted"`
	Failed    int    `json:"failed" yaml:"failed"`
}

type Report struct {
	AlreadyCompleted bool         `json:"alreadyCompleted" yaml:"alreadyCompleted"`
	Kinds            []KindReport `json:"kinds" yaml:"kinds"`
}

type Migrator struct {
	store     localstore.Storage
	client    *api.Client
	batchSize int
	log       *logger.Logger
}

func New(store localstore.Storage, client *api.Client, batchSize int, log *logger.Logger) *Migrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Migrator{store: store, client: client, batchSize: batchSize, log: log.With("component", "migration")}
}

// Done 迁移标记是否已经设置
func (m *Migrator) Done(ctx context.Context) (bool, error) {
	it, ok, err := m.store.GetItem(ctx, localstore.KeyMigrationCompleted)
	if err != nil {
		return false, fmt.Errorf("read migration flag: %w", err)
	}
	return ok && it.Value == "true", nil
}

// Run 依次迁移 stress、breathing、meditation
// 单条失败只记日志和计数；所有类型都尝试过之后无条件设置完成标记
func (m *Migrator) Run(ctx context.Context) (Report, error) {
	done, err := m.Done(ctx)
	if err != nil {
		return Report{}, err
	}
	if done {
		m.log.Info("data migration already completed")
		return Report{AlreadyCompleted: true}, nil
	}

	userID, err := m.client.UserID(ctx)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, k := range model.Kinds {
		report.Kinds = append(report.Kinds, m.migrateKind(ctx, k, userID))
	}

	if _, err := m.store.SetItem(ctx, localstore.KeyMigrationCompleted, "true", localstore.AnyVersion); err != nil {
		return report, fmt.Errorf("set migration flag: %w", err)
	}
	m.log.Info("data migration completed")
	return report, nil
}

func (m *Migrator) migrateKind(ctx context.Context, k model.Kind, userID string) KindReport {
	rep := KindReport{Kind: k.Name}
	recs := m.readLocal(ctx, LocalKey[k.Name])
	if len(recs) == 0 {
		m.log.Info("nothing to migrate", "kind", k.Name)
		return rep
	}
	m.log.Info("migrating records", "kind", k.Name, "count", len(recs))

	path := "/api/" + k.Name
	batches := (len(recs) + m.batchSize - 1) / m.batchSize
	var failed atomic.Int64
	for i := 0; i < len(recs); i += m.batchSize {
		batch := recs[i:min(i+m.batchSize, len(recs))]

		// 批内并发，批与批之间串行
		var g errgroup.Group
		for _, rec := range batch {
			payload := prepare(rec, userID)
			g.Go(func() error {
				if err := m.client.Do(ctx, http.MethodPost, path, payload, nil); err != nil {
					m.log.Error("migrate record failed", "kind", k.Name, "error", err)
					failed.Add(1)
				}
				return nil
			})
		}
		_ = g.Wait()
		m.log.Debug("migrated batch", "kind", k.Name, "batch", i/m.batchSize+1, "of", batches)
	}

	rep.Attempted = len(recs)
	rep.Failed = int(failed.Load())
	return rep
}

// readLocal 直接读原始 JSON，保留所有字段；损坏视为空
func (m *Migrator) readLocal(ctx context.Context, key string) []map[string]any {
	it, ok, err := m.store.GetItem(ctx, key)
	if err != nil {
		m.log.Error("read local data failed", "key", key, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var recs []map[string]any
	if err := json.Unmarshal([]byte(it.Value), &recs); err != nil {
		m.log.Error("malformed local data", "key", key, "error", err)
		return nil
	}
	return recs
}

// prepare 去掉本地 id，写入 userId
func prepare(rec map[string]any, userID string) map[string]any {
	out := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		if k == "id" || k == "_id" {
			continue
		}
		out[k] = v
	}
	out["userId"] = userID
	return out
}
