package config

import (
	"log/slog"
	"time"

	"github.com/creamcroissant/bakehub/internal/query"
)

// Config 汇总应用的全部配置。
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Query    QueryConfig    `mapstructure:"query"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// HTTPConfig 定义 HTTP 服务配置。
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit       int64         `mapstructure:"body_limit"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	Environment string `mapstructure:"environment"`
}

// DBConfig 定义数据库配置。
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// AuthConfig 定义认证配置。
type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Leeway     time.Duration `mapstructure:"leeway"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// SecurityConfig 定义限流相关配置。
type SecurityConfig struct {
	RateLimitEnabled bool          `mapstructure:"rate_limit_enabled"`
	RateLimit        int           `mapstructure:"rate_limit"`
	RateWindow       time.Duration `mapstructure:"rate_window"`
	LoginLimit       int           `mapstructure:"login_limit"`
	InquiryLimit     int           `mapstructure:"inquiry_limit"`
	InquiryWindow    time.Duration `mapstructure:"inquiry_window"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Token     string    `mapstructure:"token"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// StorageConfig 定义上传文件的存储后端。
type StorageConfig struct {
	Driver         string   `mapstructure:"driver"`
	Dir            string   `mapstructure:"dir"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	ThumbnailWidth uint     `mapstructure:"thumbnail_width"`
	S3             S3Config `mapstructure:"s3"`
}

// S3Config 定义 S3 兼容对象存储。
type S3Config struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Prefix         string `mapstructure:"prefix"`
	Endpoint       string `mapstructure:"endpoint"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// QueryConfig 定义列表接口的分页上限。
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// Bounds converts the paging settings into query bounds.
func (c QueryConfig) Bounds() query.Bounds {
	return query.Bounds{DefaultLimit: c.DefaultLimit, MaxLimit: c.MaxLimit}
}

// NotifyConfig 定义通知邮件配置。
type NotifyConfig struct {
	FromAddress  string `mapstructure:"from_address"`
	AdminEmail   string `mapstructure:"admin_email"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	Schedule     string `mapstructure:"schedule"`
	MaxRetries   uint64 `mapstructure:"max_retries"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
