// 文件路径: internal/bootstrap/infra.go
// 模块说明: 这是 internal 模块里的 infra 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/creamcroissant/bakehub/internal/async"
	"github.com/creamcroissant/bakehub/internal/auth/token"
	"github.com/creamcroissant/bakehub/internal/cache"
	"github.com/creamcroissant/bakehub/internal/config"
	"github.com/creamcroissant/bakehub/internal/notifier"
	"github.com/creamcroissant/bakehub/internal/security"
	"github.com/creamcroissant/bakehub/internal/storage"
	"github.com/creamcroissant/bakehub/internal/support/hash"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

const notificationQueueCapacity = 1000

// Infrastructure bundles the shared helpers services and handlers depend on.
type Infrastructure struct {
	Cache       cache.Store
	Token       *token.Manager
	Hasher      hash.Hasher
	RateLimiter *security.RateLimiter
	Audit       security.Recorder
	Storage     storage.Backend
	I18n        *i18n.Manager
	Validator   *validate.Validator

	// Queue buffers email; Notifier enqueues into it and Mailer delivers from it.
	Queue    *async.NotificationQueue
	Notifier notifier.Service
	Mailer   notifier.Service
}

// BuildInfrastructure wires the default implementations from cfg. signingKey
// is the resolved JWT key (see ResolveJWTSigningKey).
func BuildInfrastructure(cfg *config.Config, signingKey string, logger *slog.Logger) (*Infrastructure, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cacheStore := cache.NewStore(cache.Options{
		Prefix:          "bakehub",
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: time.Minute,
	})

	tokenManager, err := token.NewManager(token.Options{
		SigningKey: []byte(signingKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt hasher: %w", err)
	}

	rateLimiter, err := security.NewRateLimiter(cacheStore)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	backend, err := storage.New(storage.Options{
		Driver: cfg.Storage.Driver,
		Dir:    cfg.Storage.Dir,
		S3: storage.S3Options{
			Bucket:         cfg.Storage.S3.Bucket,
			Region:         cfg.Storage.S3.Region,
			Prefix:         cfg.Storage.S3.Prefix,
			Endpoint:       cfg.Storage.S3.Endpoint,
			ForcePathStyle: cfg.Storage.S3.ForcePathStyle,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	translations, err := i18n.NewManager(i18n.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}

	mailer, err := NewMailer(cfg.Notify, logger)
	if err != nil {
		return nil, err
	}
	queue := async.NewNotificationQueue(notificationQueueCapacity)

	return &Infrastructure{
		Cache:       cacheStore,
		Token:       tokenManager,
		Hasher:      hasher,
		RateLimiter: rateLimiter,
		Audit:       security.NewLoggerRecorder(logger),
		Storage:     backend,
		I18n:        translations,
		Validator:   validate.Default(),
		Queue:       queue,
		Notifier:    async.NewQueueNotifier(queue),
		Mailer:      mailer,
	}, nil
}

// NewMailer returns an SMTP transport when a host is configured and a
// log-only transport otherwise.
func NewMailer(cfg config.NotifyConfig, logger *slog.Logger) (notifier.Service, error) {
	if cfg.SMTPHost == "" {
		return notifier.NewLoggerService(logger), nil
	}
	svc, err := notifier.NewSMTPService(notifier.SMTPOptions{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.FromAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp notifier: %w", err)
	}
	return svc, nil
}
