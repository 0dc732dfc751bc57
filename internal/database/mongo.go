package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// indexTimeout 后台建索引的上限
const indexTimeout = 30 * time.Second

// Mongo 懒连接的 Mongo 客户端，驱动自己维护连接池和重连
// mongo.Connect 本身不做网络 I/O，锁里只保护 client 字段
type Mongo struct {
	uri    string
	dbName string
	log    *logger.Logger

	mu     sync.Mutex
	client *mongo.Client

	indexed  atomic.Bool
	indexing atomic.Bool
}

func NewMongo(uri, dbName string, log *logger.Logger) *Mongo {
	return &Mongo{uri: uri, dbName: dbName, log: log}
}

func (m *Mongo) getClient(ctx context.Context) (*mongo.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		opts := options.Client().
			ApplyURI(m.uri).
			SetServerSelectionTimeout(10 * time.Second).
			SetSocketTimeout(45 * time.Second)
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			m.log.Error("mongo connection error", "error", err)
			return nil, fmt.Errorf("%w: %v", pkgerr.ErrStoreUnavailable, err)
		}
		m.client = client
	}
	return m.client, nil
}

// Database 返回数据库句柄，第一次调用时建立客户端
// 索引在后台建，不阻塞请求
func (m *Mongo) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := m.getClient(ctx)
	if err != nil {
		return nil, err
	}
	db := client.Database(m.dbName)
	if !m.indexed.Load() && m.indexing.CompareAndSwap(false, true) {
		go func() {
			defer m.indexing.Store(false)
			ictx, cancel := context.WithTimeout(context.Background(), indexTimeout)
			defer cancel()
			if m.ensureIndexes(ictx, db) {
				m.indexed.Store(true)
			}
		}()
	}
	return db, nil
}

// ensureIndexes 每个集合按 userId 建索引，失败只记录日志，下次再试
func (m *Mongo) ensureIndexes(ctx context.Context, db *mongo.Database) bool {
	for _, k := range model.Kinds {
		_, err := db.Collection(k.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}},
		})
		if err != nil {
			m.log.Warn("mongo index creation failed", "collection", k.Collection, "error", err)
			return false
		}
	}
	return true
}

func (m *Mongo) Ping(ctx context.Context) error {
	db, err := m.Database(ctx)
	if err != nil {
		return err
	}
	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", pkgerr.ErrStoreUnavailable, err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	m.indexed.Store(false)
	return err
}
