package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string // 运行环境：dev 或 prod
	Addr string // 服务绑定地址，默认 :5000

	// 后端存储连接串：mongodb://、postgres://、memory，留空则所有请求走降级逻辑
	DatabaseURL   string
	MongoDatabase string
	PingTimeout   time.Duration

	JWTSecret string
	JWTExpire time.Duration

	AllowOrigins []string
	RateRPS      float64
	RateBurst    int

	// Postgres 分项配置，仅在 DATABASE_URL 为空且设置了 PGHOST 时使用
	PGUser string
	PGPass string
	PGDB   string
	PGHost string
	PGPort string
}

// Cfg 供 pkg/mypubliclib/util 等无法注入配置的地方读取
var Cfg = &Config{JWTSecret: "dev-guest-secret", JWTExpire: 7 * 24 * time.Hour}

// Load 从 .env 文件和环境变量读取配置
// 优先级：环境变量 > .env 文件 > 默认值
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Env:           get("ENV", "dev"),
		Addr:          get("ADDR", ":"+get("PORT", "5000")),
		DatabaseURL:   get("DATABASE_URL", os.Getenv("MONGODB_URI")),
		MongoDatabase: get("MONGODB_DATABASE", "mindflow"),
		JWTSecret:     get("JWT_SECRET", "dev-guest-secret"),
		AllowOrigins:  splitCSV(get("ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")),
		PGUser:        get("PGUSER", "app"),
		PGPass:        get("PGPASSWORD", "app"),
		PGDB:          get("PGDATABASE", "mindflow"),
		PGHost:        os.Getenv("PGHOST"),
		PGPort:        get("PGPORT", "5432"),
	}

	var err error
	if c.PingTimeout, err = duration("STORE_PING_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if c.JWTExpire, err = duration("JWT_EXPIRE", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if c.RateRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "10"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if c.RateBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}

	if c.DatabaseURL == "" && c.PGHost != "" {
		c.DatabaseURL = c.DSN()
	}

	Cfg = c
	return c, nil
}

// DSN 拼出 GORM PostgreSQL 驱动的 key=value 连接串
// sslmode=disable 用于开发环境（生产环境应改为 require）
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.PGHost, c.PGUser, c.PGPass, c.PGDB, c.PGPort,
	)
}

// StoreKind 根据连接串判断后端类型：mongo、postgres、memory 或 none
func (c *Config) StoreKind() string {
	u := strings.TrimSpace(c.DatabaseURL)
	switch {
	case u == "":
		return "none"
	case u == "memory":
		return "memory"
	case strings.HasPrefix(u, "mongodb://"), strings.HasPrefix(u, "mongodb+srv://"):
		return "mongo"
	default:
		return "postgres"
	}
}

// get 从环境变量获取值，如果为空则返回默认值
func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

// splitCSV 将以逗号分隔的字符串分割成数组，并去除每个元素的前后空格
func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
