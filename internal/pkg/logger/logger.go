package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger 项目统一的日志包装，方法签名沿用 Info(msg, kv...) 的写法
type Logger struct {
	l *slog.Logger
}

// Init 创建写往 stdout 的日志器：dev 环境输出文本并打开 debug，其余环境输出 JSON
func Init(env string) *Logger {
	return New(os.Stdout, env)
}

// New 创建写往 w 的日志器，测试里传 bytes.Buffer 即可
func New(w io.Writer, env string) *Logger {
	var h slog.Handler
	if env == "dev" || env == "" {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{l: slog.New(h)}
}

// Nop 丢弃所有输出
func Nop() *Logger {
	return &Logger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// With 派生带固定字段的子日志器
func (l *Logger) With(kvs ...any) *Logger {
	return &Logger{l: l.l.With(kvs...)}
}

func (l *Logger) Info(msg string, kvs ...any) {
	l.l.Info(msg, kvs...)
}

func (l *Logger) Debug(msg string, kvs ...any) {
	l.l.Debug(msg, kvs...)
}

func (l *Logger) Warn(msg string, kvs ...any) {
	l.l.Warn(msg, kvs...)
}

func (l *Logger) Error(msg string, kvs ...any) {
	l.l.Error(msg, kvs...)
}

// InfoContext 与 Info 相同，额外带上 ctx 以便 handler 读取请求信息
func (l *Logger) InfoContext(ctx context.Context, msg string, kvs ...any) {
	l.l.InfoContext(ctx, msg, kvs...)
}

func (l *Logger) Fatal(msg string, kvs ...any) {
	l.l.Error(msg, kvs...)
	os.Exit(1)
}

func (l *Logger) Sync() error { return nil }
