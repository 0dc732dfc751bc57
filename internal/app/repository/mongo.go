package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/database"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
)

// Mongo 基于 mongo-driver 的仓库，_id 使用服务端生成的字符串 id
type Mongo[T any, P model.Record[T]] struct {
	conn  *database.Mongo
	kind  model.Kind
	clock clock.Clock
}

func NewMongo[T any, P model.Record[T]](conn *database.Mongo, kind model.Kind, c clock.Clock) *Mongo[T, P] {
	return &Mongo[T, P]{conn: conn, kind: kind, clock: c}
}

func (r *Mongo[T, P]) Ping(ctx context.Context) error { return r.conn.Ping(ctx) }

func (r *Mongo[T, P]) coll(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.conn.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(r.kind.Collection), nil
}

func (r *Mongo[T, P]) ListByUser(ctx context.Context, userID string) ([]T, error) {
	c, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	sort := bson.D{}
	for _, s := range r.kind.Sort {
		sort = append(sort, bson.E{Key: s.BSON, Value: -1})
	}
	cur, err := c.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, mongoErr("list "+r.kind.Name, err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoErr("list "+r.kind.Name, err)
	}
	return out, nil
}

func (r *Mongo[T, P]) Get(ctx context.Context, id string) (*T, error) {
	c, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var rec T
	err = c.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkgerr.NotFound(r.kind.Noun, id)
	}
	if err != nil {
		return nil, mongoErr("get "+r.kind.Name, err)
	}
	return &rec, nil
}

func (r *Mongo[T, P]) Create(ctx context.Context, rec *T) error {
	c, err := r.coll(ctx)
	if err != nil {
		return err
	}
	P(rec).Touch(r.now())
	_, err = c.InsertOne(ctx, rec)
	return mongoErr("create "+r.kind.Name, err)
}

func (r *Mongo[T, P]) Save(ctx context.Context, rec *T) error {
	c, err := r.coll(ctx)
	if err != nil {
		return err
	}
	P(rec).Touch(r.now())
	res, err := c.ReplaceOne(ctx, bson.M{"_id": P(rec).RecordID()}, rec)
	if err != nil {
		return mongoErr("save "+r.kind.Name, err)
	}
	if res.MatchedCount == 0 {
		return pkgerr.NotFound(r.kind.Noun, P(rec).RecordID())
	}
	return nil
}

func (r *Mongo[T, P]) Delete(ctx context.Context, id string) error {
	c, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr("delete "+r.kind.Name, err)
	}
	if res.DeletedCount == 0 {
		return pkgerr.NotFound(r.kind.Noun, id)
	}
	return nil
}

func (r *Mongo[T, P]) now() time.Time {
	return r.clock.Now().UTC()
}

func mongoErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %v", op, pkgerr.ErrStoreUnavailable, err)
	}
	return classify(op, err)
}
