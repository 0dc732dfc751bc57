package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/database"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

// Gorm 基于 GORM/PostgreSQL 的仓库
type Gorm[T any, P model.Record[T]] struct {
	conn *database.Postgres
	kind model.Kind
}

func NewGorm[T any, P model.Record[T]](conn *database.Postgres, kind model.Kind) *Gorm[T, P] {
	return &Gorm[T, P]{conn: conn, kind: kind}
}

func (r *Gorm[T, P]) Ping(ctx context.Context) error { return r.conn.Ping(ctx) }

// ListByUser 按 kind.Sort 倒序返回该用户的全部记录
func (r *Gorm[T, P]) ListByUser(ctx context.Context, userID string) ([]T, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}
	q := db.Where("user_id = ?", userID)
	for _, s := range r.kind.Sort {
		q = q.Order(s.Column + " DESC")
	}
	out := []T{}
	if err := q.Find(&out).Error; err != nil {
		return nil, classify("list "+r.kind.Name, err)
	}
	return out, nil
}

func (r *Gorm[T, P]) Get(ctx context.Context, id string) (*T, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}
	var rec T
	err = db.Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerr.NotFound(r.kind.Noun, id)
	}
	if err != nil {
		return nil, classify("get "+r.kind.Name, err)
	}
	return &rec, nil
}

func (r *Gorm[T, P]) Create(ctx context.Context, rec *T) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}
	return classify("create "+r.kind.Name, db.Create(rec).Error)
}

// Save 整行覆盖；调用方负责先 Get 确认记录存在
func (r *Gorm[T, P]) Save(ctx context.Context, rec *T) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}
	res := db.Model(rec).Where("id = ?", P(rec).RecordID()).Select("*").Omit("created_at").Updates(rec)
	if res.Error != nil {
		return classify("save "+r.kind.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerr.NotFound(r.kind.Noun, P(rec).RecordID())
	}
	return nil
}

func (r *Gorm[T, P]) Delete(ctx context.Context, id string) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return classify("delete "+r.kind.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerr.NotFound(r.kind.Noun, id)
	}
	return nil
}
