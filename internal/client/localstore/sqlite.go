package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mindflow-app/mindflow-BE/internal/client/localstore/migrations"
)

// SQLite 基于单个 SQLite 文件的实现
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite 打开（必要时创建）数据库并迁移到最新版本
// path 可以是文件路径，也可以是 ":memory:"
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: 每个连接都是独立的库，只保留一个连接；文件库也只有本进程一个写者
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) GetItem(ctx context.Context, key string) (Item, bool, error) {
	var it Item
	err := s.db.QueryRowContext(ctx,
		"SELECT value, version FROM items WHERE key = ?", key,
	).Scan(&it.Value, &it.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	return it, true, nil
}

func (s *SQLite) SetItem(ctx context.Context, key, value string, expectVersion int64) (int64, error) {
	var (
		query string
		args  []any
	)
	switch {
	case expectVersion == AnyVersion:
		query = `INSERT INTO items (key, value, version) VALUES (?, ?, 1)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = items.version + 1
			RETURNING version`
		args = []any{key, value}
	case expectVersion == 0:
		query = `INSERT INTO items (key, value, version) VALUES (?, ?, 1)
			ON CONFLICT(key) DO NOTHING
			RETURNING version`
		args = []any{key, value}
	default:
		query = `UPDATE items SET value = ?, version = version + 1
			WHERE key = ? AND version = ?
			RETURNING version`
		args = []any{value, key, expectVersion}
	}

	var version int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("set %s: %w", key, err)
	}
	return version, nil
}

func (s *SQLite) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE key = ?", key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
