package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// Pinger 每个请求都会重新检查一次连接状态
type Pinger interface {
	Ping(ctx context.Context) error
}

// dialTimeout 一次拨号加 AutoMigrate 的上限，与发起请求的 ctx 无关
const dialTimeout = 10 * time.Second

// Postgres 懒连接的 GORM 句柄
// 第一次用到时才拨号并 AutoMigrate；拨号失败不缓存，下一个请求再试
// 同一时间只有一次拨号，其他请求等它或者等自己的 ctx 超时
type Postgres struct {
	dsn  string
	log  *logger.Logger
	open func(ctx context.Context, dsn string) (*gorm.DB, error)
	dial singleflight.Group

	mu sync.Mutex
	db *gorm.DB
}

func NewPostgres(dsn string, log *logger.Logger) *Postgres {
	return &Postgres{dsn: dsn, log: log, open: openGorm}
}

func openGorm(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(withConnectTimeout(dsn)), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Warn),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// withConnectTimeout 连接串里没写 connect_timeout 时补上，URL 和 key=value 两种写法都支持
func withConnectTimeout(dsn string) string {
	if strings.Contains(dsn, "connect_timeout") {
		return dsn
	}
	secs := strconv.Itoa(int(dialTimeout / time.Second))
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("connect_timeout", secs)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn) + " connect_timeout=" + secs
}

// InitGorm 运行自动迁移
// AutoMigrate 会创建表、补齐缺失的列和索引，不会删除已有字段
func InitGorm(db *gorm.DB) error {
	return db.AutoMigrate(&model.StressEntry{}, &model.BreathingSession{}, &model.MeditationSession{})
}

func (p *Postgres) current() *gorm.DB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db
}

// DB 返回绑定了 ctx 的句柄；连不上或 ctx 先结束时返回 ErrStoreUnavailable
func (p *Postgres) DB(ctx context.Context) (*gorm.DB, error) {
	if db := p.current(); db != nil {
		return db.WithContext(ctx), nil
	}

	ch := p.dial.DoChan("dial", p.connect)
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", pkgerr.ErrStoreUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*gorm.DB).WithContext(ctx), nil
	}
}

func (p *Postgres) connect() (any, error) {
	if db := p.current(); db != nil {
		return db, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	p.log.Info("connecting to postgres")
	db, err := p.open(ctx, p.dsn)
	if err != nil {
		p.log.Error("postgres connection error", "error", err)
		return nil, fmt.Errorf("%w: %v", pkgerr.ErrStoreUnavailable, err)
	}
	if err := InitGorm(db.WithContext(ctx)); err != nil {
		p.log.Error("postgres automigrate error", "error", err)
		if sqlDB, e := db.DB(); e == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("%w: %v", pkgerr.ErrStoreUnavailable, err)
	}
	p.log.Info("postgres connected")

	p.mu.Lock()
	p.db = db
	p.mu.Unlock()
	return db, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	db, err := p.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerr.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", pkgerr.ErrStoreUnavailable, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	p.db = nil
	return sqlDB.Close()
}
