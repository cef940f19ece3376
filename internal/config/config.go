package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from environment variables (and an optional .env file).
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Capture CaptureConfig `mapstructure:"capture"`
	Export  ExportConfig  `mapstructure:"export"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Session SessionConfig `mapstructure:"session"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`

	// AllowedOrigins 限制 WebSocket 的来源，逗号分隔；为空时只允许同源。
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CaptureConfig 控制无头浏览器截图。
type CaptureConfig struct {
	Driver     string        `mapstructure:"driver"`
	Scale      float64       `mapstructure:"scale"`
	BrowserBin string        `mapstructure:"browser_bin"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ExportConfig 控制 PDF 导出流水线。
type ExportConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	VerifyOutput bool          `mapstructure:"verify_output"`
}

// UploadConfig 控制头像上传。
type UploadConfig struct {
	// MaxBytes 为 0 表示不限制。
	MaxBytes int64 `mapstructure:"max_bytes"`

	// ClamdAddr 为空时跳过病毒扫描。
	ClamdAddr string `mapstructure:"clamd_addr"`
}

// NotifyConfig 选择实时推送的后端。
type NotifyConfig struct {
	Backend string `mapstructure:"backend"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr 返回 host:port。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SessionConfig 控制编辑会话的生命周期。
type SessionConfig struct {
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

const (
	NotifyLocal = "local"
	NotifyRedis = "redis"
)

// Load reads configuration from environment variables (with optional defaults).
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load()
}

func load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitOrigins(cfg.API.AllowedOrigins)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", []string{})
	v.SetDefault("capture.driver", "rod")
	v.SetDefault("capture.scale", 2.0)
	v.SetDefault("capture.browser_bin", "")
	v.SetDefault("capture.timeout", 45*time.Second)
	v.SetDefault("export.timeout", 60*time.Second)
	v.SetDefault("export.verify_output", true)
	v.SetDefault("upload.max_bytes", 0)
	v.SetDefault("upload.clamd_addr", "")
	v.SetDefault("notify.backend", NotifyLocal)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("session.idle_ttl", 2*time.Hour)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":             "API_PORT",
		"api.allowed_origins":  "API_ALLOWED_ORIGINS",
		"capture.driver":       "CAPTURE_DRIVER",
		"capture.scale":        "CAPTURE_SCALE",
		"capture.browser_bin":  "CAPTURE_BROWSER_BIN",
		"capture.timeout":      "CAPTURE_TIMEOUT",
		"export.timeout":       "EXPORT_TIMEOUT",
		"export.verify_output": "EXPORT_VERIFY_OUTPUT",
		"upload.max_bytes":     "UPLOAD_MAX_BYTES",
		"upload.clamd_addr":    "CLAMD_ADDR",
		"notify.backend":       "NOTIFY_BACKEND",
		"redis.host":           "REDIS_HOST",
		"redis.port":           "REDIS_PORT",
		"session.idle_ttl":     "SESSION_IDLE_TTL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitOrigins 兼容 "a,b" 形式的环境变量。
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	switch cfg.Capture.Driver {
	case "rod", "chromedp":
	default:
		return fmt.Errorf("capture driver %q is not supported", cfg.Capture.Driver)
	}
	if cfg.Capture.Scale < 2 {
		return errors.New("capture scale must be at least 2")
	}
	if cfg.Capture.Timeout <= 0 {
		return errors.New("capture timeout must be positive")
	}
	if cfg.Export.Timeout <= 0 {
		return errors.New("export timeout must be positive")
	}
	if cfg.Upload.MaxBytes < 0 {
		return errors.New("upload max bytes must not be negative")
	}
	switch cfg.Notify.Backend {
	case NotifyLocal:
	case NotifyRedis:
		if cfg.Redis.Host == "" {
			return errors.New("redis host is required")
		}
		if cfg.Redis.Port <= 0 {
			return errors.New("redis port must be positive")
		}
	default:
		return fmt.Errorf("notify backend %q is not supported", cfg.Notify.Backend)
	}
	if cfg.Session.IdleTTL < 0 {
		return errors.New("session idle ttl must not be negative")
	}
	return nil
}
