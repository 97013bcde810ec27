package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/creamcroissant/bakehub/internal/api"
	"github.com/creamcroissant/bakehub/internal/bootstrap"
	"github.com/creamcroissant/bakehub/internal/config"
	"github.com/creamcroissant/bakehub/internal/job"
	"github.com/creamcroissant/bakehub/internal/repository/sqlite"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/logging"
)

const tokenCleanupSpec = "@every 1h"
const loginLogCleanupSpec = "0 30 3 * * *"

// app holds everything a command needs once the database is open.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	store    *sqlite.Store
	infra    *bootstrap.Infrastructure
	services api.Services
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Options{
		Level:       cfg.Log.SlogLevel(),
		Format:      cfg.Log.Format,
		AddSource:   cfg.Log.AddSource,
		Environment: cfg.Log.Environment,
	})
}

// openApp opens and migrates the database, resolves the signing key and
// builds every service. Callers must Close the result.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := bootstrap.OpenAndMigrate(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	store := sqlite.NewStore(db, sqlite.WithQueryBounds(cfg.Query.Bounds()))

	signingKey, source, err := bootstrap.ResolveJWTSigningKey(ctx, store.Settings(), cfg.Auth.SigningKey, time.Now)
	if err != nil {
		db.Close()
		return nil, err
	}
	switch source {
	case bootstrap.JWTSigningKeySourceConfig:
		logger.Debug("jwt signing key loaded", "source", "config")
	case bootstrap.JWTSigningKeySourceSettings:
		logger.Debug("jwt signing key loaded", "source", "settings")
	case bootstrap.JWTSigningKeySourceGenerated:
		logger.Info("jwt signing key generated", "source", "generated-and-persisted")
	}

	infra, err := bootstrap.BuildInfrastructure(cfg, signingKey, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, db: db, store: store, infra: infra}
	a.services = a.buildServices(time.Now().UTC())
	return a, nil
}

func (a *app) buildServices(startedAt time.Time) api.Services {
	cfg, store, infra := a.cfg, a.store, a.infra
	bounds := cfg.Query.Bounds()

	auth := service.NewAuthService(service.AuthOptions{
		Users:      store.Users(),
		Bakers:     store.Bakers(),
		Settings:   store.Settings(),
		LoginLogs:  store.LoginLogs(),
		Tokens:     store.Tokens(),
		Hasher:     infra.Hasher,
		TokenMgr:   infra.Token,
		Rate:       infra.RateLimiter,
		Audit:      infra.Audit,
		Cache:      infra.Cache,
		LoginLimit: cfg.Security.LoginLimit,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	return api.Services{
		Auth:     auth,
		Register: service.NewRegistrationService(store, infra.Hasher, auth, infra.Audit, infra.Validator),
		Showcase: service.NewShowcaseService(service.ShowcaseOptions{
			Store:         store,
			Notifier:      infra.Notifier,
			I18n:          infra.I18n,
			Rate:          infra.RateLimiter,
			Cache:         infra.Cache,
			Validator:     infra.Validator,
			Bounds:        bounds,
			InquiryLimit:  cfg.Security.InquiryLimit,
			InquiryWindow: cfg.Security.InquiryWindow,
		}),
		Bakers:    service.NewBakerService(store, infra.Validator),
		Customers: service.NewCustomerService(store, bounds, infra.Validator),
		Orders:    service.NewOrderService(store, infra.Notifier, infra.I18n, bounds, infra.Validator),
		Gallery:   service.NewGalleryService(store, bounds, infra.Validator),
		Files: service.NewFileService(store, infra.Storage, service.FileOptions{
			MaxBytes:       cfg.Storage.MaxUploadBytes,
			ThumbnailWidth: cfg.Storage.ThumbnailWidth,
		}, bounds, a.logger),
		Messages: service.NewMessageService(store, bounds),
		Entities: service.NewEntityService(store, bounds),
		AdminUsers: service.NewAdminUserService(service.AdminUserOptions{
			Store:     store,
			Hasher:    infra.Hasher,
			Audit:     infra.Audit,
			Validator: infra.Validator,
			Bounds:    bounds,
		}),
		AdminCatalog: service.NewAdminCatalogService(store, infra.Cache, infra.Validator, bounds),
		AdminSettings: service.NewAdminSettingsService(service.AdminSettingsOptions{
			Settings: store.Settings(),
			Audit:    infra.Audit,
		}),
		AdminSystem: service.NewAdminSystemService(service.AdminSystemOptions{
			Version:           Version,
			Environment:       cfg.Log.Environment,
			StartedAt:         startedAt,
			NotificationQueue: infra.Queue,
			Store:             store,
		}),
		I18n: infra.I18n,
	}
}

// scheduler registers the background jobs without starting them.
func (a *app) scheduler() (*job.Scheduler, error) {
	scheduler := job.NewScheduler(a.logger)
	jobs := []struct {
		spec     string
		runnable job.Runnable
	}{
		{a.cfg.Notify.Schedule, job.NewSendEmailJob(a.infra.Queue, a.infra.Mailer, a.logger, a.cfg.Notify.MaxRetries)},
		{tokenCleanupSpec, job.NewTokenCleanupJob(a.store.Tokens(), a.logger)},
		{loginLogCleanupSpec, job.NewLoginLogCleanupJob(a.store.LoginLogs(), job.DefaultLoginLogRetention, a.logger)},
	}
	for _, j := range jobs {
		if err := scheduler.Register(j.spec, j.runnable); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

// bakerBySlug resolves a bakery for the operator commands.
func (a *app) bakerBySlug(ctx context.Context, slug string) (*service.BakerView, error) {
	baker, err := a.store.Bakers().FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("baker %q: %w", slug, err)
	}
	return a.services.Bakers.Profile(ctx, baker.ID)
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp opens the app for a one-shot command using a quiet logger.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	logger := logging.New(logging.Options{Level: slog.LevelWarn, Format: "text", Output: os.Stderr})
	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
