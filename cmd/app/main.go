package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/app/repository"
	"github.com/mindflow-app/mindflow-BE/internal/app/router"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	pkgconfig "github.com/mindflow-app/mindflow-BE/internal/pkg/config"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

func main() {
	cfg, err := pkgconfig.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(cfg.Env)
	defer func() { _ = log.Sync() }()

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 存储按需连接，连不上时接口自动降级
	store := repository.Open(cfg, clock.Real{}, log)
	if store.Kind == "none" {
		log.Warn("no DATABASE_URL configured, all requests will be served in degraded mode")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.New(router.Deps{Cfg: cfg, Log: log, Store: store}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Env, "store", store.Kind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := store.Close(ctx); err != nil {
		log.Error("store close error", "error", err)
	}
	log.Info("server stopped")
}
