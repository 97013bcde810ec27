package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads defaults, config.yaml, legacy .env keys and BAKEHUB_* variables, in that order of precedence.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path; empty means search the default locations.
func LoadFrom(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/bakehub/")
	}

	v.SetEnvPrefix("BAKEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("storage.s3.bucket", "BAKEHUB_STORAGE_S3_BUCKET", "BAKEHUB_S3_BUCKET"); err != nil {
		return nil, fmt.Errorf("bind env storage.s3.bucket: %w", err)
	}
	if err := v.BindEnv("storage.s3.region", "BAKEHUB_STORAGE_S3_REGION", "AWS_REGION"); err != nil {
		return nil, fmt.Errorf("bind env storage.s3.region: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Debug("config file not found, using defaults and environment")
	} else {
		slog.Debug("using config file", "path", v.ConfigFileUsed())
	}

	if err := loadDotEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.body_limit", 12*1024*1024)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "production")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/bakehub.db")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.refresh_ttl", "168h")
	v.SetDefault("auth.issuer", "bakehub")
	v.SetDefault("auth.audience", "bakehub-client")
	v.SetDefault("auth.leeway", "30s")
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("security.rate_limit_enabled", true)
	v.SetDefault("security.rate_limit", 120)
	v.SetDefault("security.rate_window", "1m")
	v.SetDefault("security.login_limit", 20)
	v.SetDefault("security.inquiry_limit", 5)
	v.SetDefault("security.inquiry_window", "10m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "bakehub")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "data/uploads")
	v.SetDefault("storage.max_upload_bytes", 10*1024*1024)
	v.SetDefault("storage.thumbnail_width", 256)

	v.SetDefault("query.default_limit", 50)
	v.SetDefault("query.max_limit", 200)

	v.SetDefault("notify.from_address", "no-reply@bakehub.local")
	v.SetDefault("notify.smtp_port", 587)
	v.SetDefault("notify.schedule", "@every 30s")
	v.SetDefault("notify.max_retries", 3)
}

func loadDotEnv(v *viper.Viper) error {
	candidates := []string{".", "..", "../.."}
	for _, path := range candidates {
		file := filepath.Clean(filepath.Join(path, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		envViper := viper.New()
		envViper.SetConfigFile(file)
		envViper.SetConfigType("env")
		if err := envViper.ReadInConfig(); err != nil {
			return fmt.Errorf("read .env: %w", err)
		}
		bindLegacyEnv(v, envViper)
	}
	return nil
}

// bindLegacyEnv maps flat .env keys onto the hierarchical config. Real
// environment variables still win because AutomaticEnv is consulted on Get.
func bindLegacyEnv(target *viper.Viper, source *viper.Viper) {
	mappings := map[string]string{
		"HTTP_ADDR":        "http.addr",
		"SHUTDOWN_TIMEOUT": "http.shutdown_timeout",
		"LOG_LEVEL":        "log.level",
		"LOG_FORMAT":       "log.format",
		"LOG_ADD_SOURCE":   "log.add_source",
		"APP_ENV":          "log.environment",
		"DB_PATH":          "database.path",
		"AUTH_SIGNING_KEY": "auth.signing_key",
		"APP_KEY":          "auth.signing_key",
		"AUTH_TOKEN_TTL":   "auth.token_ttl",
		"AUTH_BCRYPT_COST": "auth.bcrypt_cost",
		"STORAGE_DRIVER":   "storage.driver",
		"STORAGE_DIR":      "storage.dir",
		"S3_BUCKET":        "storage.s3.bucket",
		"S3_REGION":        "storage.s3.region",
		"S3_ENDPOINT":      "storage.s3.endpoint",
		"QUERY_MAX_LIMIT":  "query.max_limit",
		"MAIL_FROM":        "notify.from_address",
		"MAIL_HOST":        "notify.smtp_host",
		"MAIL_PORT":        "notify.smtp_port",
		"MAIL_USERNAME":    "notify.smtp_username",
		"MAIL_PASSWORD":    "notify.smtp_password",
	}

	for oldKey, newKey := range mappings {
		if val := source.GetString(oldKey); val != "" {
			target.Set(newKey, val)
		}
	}
}
