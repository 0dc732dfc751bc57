package repository

import (
	"context"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/database"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/config"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// Store 三个集合的仓库加上共用的连接
type Store struct {
	Kind       string
	Stress     Repository[model.StressEntry]
	Breathing  Repository[model.BreathingSession]
	Meditation Repository[model.MeditationSession]

	// Pinger 给 /api/status 用
	Pinger database.Pinger
	closer func(ctx context.Context) error
}

// Open 根据 DATABASE_URL 选择后端；这里不拨号，第一次请求时才连接
func Open(cfg *config.Config, c clock.Clock, log *logger.Logger) *Store {
	kind := cfg.StoreKind()
	s := &Store{Kind: kind, closer: func(context.Context) error { return nil }}

	switch kind {
	case "mongo":
		conn := database.NewMongo(cfg.DatabaseURL, cfg.MongoDatabase, log.With("store", "mongo"))
		s.Stress = NewMongo[model.StressEntry](conn, model.Stress, c)
		s.Breathing = NewMongo[model.BreathingSession](conn, model.Breathing, c)
		s.Meditation = NewMongo[model.MeditationSession](conn, model.Meditation, c)
		s.Pinger = conn
		s.closer = conn.Close
	case "postgres":
		conn := database.NewPostgres(cfg.DatabaseURL, log.With("store", "postgres"))
		s.Stress = NewGorm[model.StressEntry](conn, model.Stress)
		s.Breathing = NewGorm[model.BreathingSession](conn, model.Breathing)
		s.Meditation = NewGorm[model.MeditationSession](conn, model.Meditation)
		s.Pinger = conn
		s.closer = func(context.Context) error { return conn.Close() }
	case "memory":
		s.Stress = NewMemory[model.StressEntry](model.Stress, c)
		s.Breathing = NewMemory[model.BreathingSession](model.Breathing, c)
		s.Meditation = NewMemory[model.MeditationSession](model.Meditation, c)
		s.Pinger = alwaysUp{}
	default:
		s.Stress = Unavailable[model.StressEntry]{}
		s.Breathing = Unavailable[model.BreathingSession]{}
		s.Meditation = Unavailable[model.MeditationSession]{}
		s.Pinger = neverUp{}
	}
	return s
}

func (s *Store) Close(ctx context.Context) error {
	return s.closer(ctx)
}

type alwaysUp struct{}

func (alwaysUp) Ping(context.Context) error { return nil }

type neverUp struct{}

func (neverUp) Ping(context.Context) error { return pkgerr.ErrStoreUnavailable }
