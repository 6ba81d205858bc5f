package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 環境變數覆寫
const (
	EnvDSN      = "SHOP_LOYALTY_DSN"
	EnvLogLevel = "SHOP_LOYALTY_LOG_LEVEL"
)

// AppConfig 應用程式設定
type AppConfig struct {
	Database DatabaseConfig `yaml:"database"`
	Loyalty  LoyaltyFiles   `yaml:"loyalty"`
	Log      LogConfig      `yaml:"log"`
	Session  SessionConfig  `yaml:"session"`
}

// DatabaseConfig 資料庫連線
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// LoyaltyFiles 會員積分設定檔位置
type LoyaltyFiles struct {
	ConfigPath          string `yaml:"config_path"`
	CompanionConfigPath string `yaml:"companion_config_path"`
}

// LogConfig 日誌
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// SessionConfig 會話快照
type SessionConfig struct {
	TTL Duration `yaml:"ttl"`
}

// Duration 以 "30m"、"1h" 格式解析的時間長度
type Duration struct {
	time.Duration
}

// UnmarshalYAML 實現 yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML 實現 yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// DefaultAppConfig 預設設定（本機 SQLite、info 日誌、30 分鐘會話）
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			DSN:          "shop_loyalty.db",
			MaxOpenConns: 1,
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			TTL: Duration{30 * time.Minute},
		},
	}
}

// LoadAppConfig 讀取應用程式設定
//
// path 為空或檔案不存在時使用預設值；之後套用環境變數覆寫。
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		c.Database.DSN = dsn
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
}

// Validate 檢查必要欄位
func (c *AppConfig) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("database.max_open_conns must be >= 0, got %d", c.Database.MaxOpenConns)
	}
	if c.Session.TTL.Duration <= 0 {
		return fmt.Errorf("session.ttl must be > 0")
	}
	return nil
}
