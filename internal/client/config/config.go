// Package config 客户端配置文件（TOML）
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL       = "http://localhost:5000"
	DefaultTimeout      = 10 * time.Second
	DefaultBatchSize    = 10
	DefaultSyncInterval = 30 * time.Second
)

type Config struct {
	APIURL       string   `toml:"api_url"`
	DataDir      string   `toml:"data_dir"`
	Timeout      Duration `toml:"timeout"`
	BatchSize    int      `toml:"batch_size"`
	SyncInterval Duration `toml:"sync_interval"` // sync --watch 的轮询间隔
	LogLevel     string   `toml:"log_level"`     // dev 输出 debug 日志
}

// Duration 以 "10s" 这样的字符串读写
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default 以 baseDir 作为数据目录的默认配置
func Default(baseDir string) *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		DataDir:      filepath.Join(baseDir, "data"),
		Timeout:      Duration{DefaultTimeout},
		BatchSize:    DefaultBatchSize,
		SyncInterval: Duration{DefaultSyncInterval},
		LogLevel:     "prod",
	}
}

// Paths 返回配置目录和配置文件路径：$XDG_CONFIG_HOME/mindflow，缺省 ~/.config/mindflow
func Paths() (baseDir, configPath string, err error) {
	root := os.Getenv("XDG_CONFIG_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("locate home dir: %w", err)
		}
		root = filepath.Join(home, ".config")
	}
	baseDir = filepath.Join(root, "mindflow")
	return baseDir, filepath.Join(baseDir, "config.toml"), nil
}

func Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Load 读取 path；文件不存在时使用默认值，缺失的字段也用默认值补齐
func Load(path, baseDir string) (*Config, error) {
	def := Default(baseDir)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	cfg.fill(def)
	return cfg, nil
}

func (c *Config) fill(def *Config) {
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Timeout.Duration <= 0 {
		c.Timeout = def.Timeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.SyncInterval.Duration <= 0 {
		c.SyncInterval = def.SyncInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// DBPath 本地数据库文件
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "local.db")
}

// Init 写入新的配置文件；已存在时报错
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	return Write(f, cfg)
}
