package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/api"
	"github.com/mindflow-app/mindflow-BE/internal/client/config"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/client/migration"
	"github.com/mindflow-app/mindflow-BE/internal/client/outbox"
	"github.com/mindflow-app/mindflow-BE/internal/client/records"
	"github.com/mindflow-app/mindflow-BE/internal/client/tracker"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// globalFlags 所有子命令共用的参数
type globalFlags struct {
	configPath string
	apiURL     string
	dataDir    string
}

// app 一次命令执行需要的全部组件，调用方负责 Close
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	clock clock.Clock
	loc   *time.Location
	store *localstore.SQLite

	client   *api.Client
	box      *outbox.Outbox
	syncer   *outbox.Syncer
	migrator *migration.Migrator

	stress     *records.Stress
	breathing  *records.Breathing
	meditation *records.Meditation
	video      *records.VideoProgress

	stressT     *tracker.Tracker[model.StressEntry, *model.StressEntry]
	breathingT  *tracker.Tracker[model.BreathingSession, *model.BreathingSession]
	meditationT *tracker.Tracker[model.MeditationSession, *model.MeditationSession]
}

func loadConfig(g *globalFlags) (*config.Config, string, error) {
	baseDir, path, err := config.Paths()
	if err != nil {
		return nil, "", err
	}
	if g.configPath != "" {
		path = g.configPath
	}
	cfg, err := config.Load(path, baseDir)
	if err != nil {
		return nil, "", err
	}
	if g.apiURL != "" {
		cfg.APIURL = g.apiURL
	}
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	return cfg, path, nil
}

func newApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, _, err := loadConfig(g)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := localstore.OpenSQLite(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	clk := clock.Real{}
	loc := time.Local

	client := api.New(cfg.APIURL, cfg.Timeout.Duration, api.NewUserIDs(store, clk, log), log)
	box := outbox.New(store, clk, clock.UUID{}, log)

	a := &app{
		cfg:        cfg,
		log:        log,
		clock:      clk,
		loc:        loc,
		store:      store,
		client:     client,
		box:        box,
		syncer:     outbox.NewSyncer(box, client, log),
		migrator:   migration.New(store, client, cfg.BatchSize, log),
		stress:     records.NewStress(store, clk, loc, log),
		breathing:  records.NewBreathing(store, clk, loc, log),
		meditation: records.NewMeditation(store, clk, loc, log),
		video:      records.NewVideoProgress(store, log),
	}
	a.stressT = tracker.NewStress(a.stress, box, client, log)
	a.breathingT = tracker.NewBreathing(a.breathing, box, client, log)
	a.meditationT = tracker.NewMeditation(a.meditation, box, client, log)
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("close local store failed", "error", err)
	}
}

// withApp 包装 RunE：打开本地存储，执行完关闭
func withApp(g *globalFlags, run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, g)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
