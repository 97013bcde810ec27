package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/creamcroissant/bakehub/internal/config"
	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DB: config.DBConfig{Driver: "sqlite", Path: filepath.Join(dir, "bakehub.db")},
		Auth: config.AuthConfig{
			SigningKey: "cli-test-signing-key",
			TokenTTL:   time.Hour,
			RefreshTTL: 24 * time.Hour,
			Issuer:     "bakehub",
			BcryptCost: bcrypt.MinCost,
		},
		Security: config.SecurityConfig{LoginLimit: 20, InquiryLimit: 5, InquiryWindow: time.Minute},
		Storage: config.StorageConfig{
			Driver:         "local",
			Dir:            filepath.Join(dir, "uploads"),
			MaxUploadBytes: 1 << 20,
			ThumbnailWidth: 64,
		},
		Query:  config.QueryConfig{DefaultLimit: 50, MaxLimit: 200},
		Notify: config.NotifyConfig{FromAddress: "no-reply@bakehub.local", Schedule: "@every 30s", MaxRetries: 1},
	}
}

func openTestApp(t *testing.T, c *config.Config) *app {
	t.Helper()
	a, err := openApp(context.Background(), c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	a := openTestApp(t, testConfig(t))

	account, err := seedDemo(ctx, a.services, "", "", time.Unix(1_700_000_000, 0))
	require.NoError(t, err)
	assert.Equal(t, demoEmail, account.Email)
	assert.Equal(t, "crumb-co", account.BakerSlug)

	stats, err := a.services.Bakers.Stats(ctx, account.BakerID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Customers)
	assert.EqualValues(t, 4, stats.GalleryItems)
	assert.EqualValues(t, 4, stats.OpenOrders)
	assert.EqualValues(t, 1, stats.OrdersByStatus[repository.OrderStatusDelivered])
	assert.EqualValues(t, 1, stats.OrdersByStatus[repository.OrderStatusReady])

	profile, err := a.bakerBySlug(ctx, "crumb-co")
	require.NoError(t, err)
	assert.True(t, profile.Published)

	_, err = seedDemo(ctx, a.services, "", "", time.Now())
	assert.ErrorIs(t, err, service.ErrEmailExists)
}

func TestSchedulerJobs(t *testing.T) {
	ctx := context.Background()
	a := openTestApp(t, testConfig(t))

	scheduler, err := a.scheduler()
	require.NoError(t, err)

	var names []string
	for _, entry := range scheduler.Entries() {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"loginlog.cleanup", "notify.email", "tokens.cleanup"}, names)

	// Status changes queue customer emails; the email job drains them.
	_, err = seedDemo(ctx, a.services, "", "", time.Now())
	require.NoError(t, err)
	require.Positive(t, a.infra.Queue.PendingEmails())

	require.NoError(t, scheduler.RunNow(ctx, "notify.email"))
	assert.Zero(t, a.infra.Queue.PendingEmails())
	assert.Error(t, scheduler.RunNow(ctx, "missing.job"))
}

func TestExplainQuery(t *testing.T) {
	var out bytes.Buffer
	err := explainQuery(&out, "?sort=-created_date&category=wedding&featured=true&limit=5", "gallery", 3, query.DefaultBounds)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, `"field": "createdAt"`)
	assert.Contains(t, text, "SELECT * FROM gallery_items WHERE baker_id = ? AND category = ? AND featured = ?")
	assert.Contains(t, text, "ORDER BY created_at DESC, id DESC LIMIT 5 OFFSET 0")
	assert.Contains(t, text, "Args: [3 wedding 1]")

	out.Reset()
	require.NoError(t, explainQuery(&out, "limit=1000", "themes", 3, query.DefaultBounds))
	assert.Contains(t, out.String(), "SELECT * FROM themes ORDER BY")
	assert.Contains(t, out.String(), "LIMIT 200 OFFSET 0")

	assert.ErrorIs(t, explainQuery(io.Discard, "bakerId=2", "orders", 3, query.DefaultBounds), query.ErrUnknownField)
	assert.Error(t, explainQuery(io.Discard, "", "recipes", 3, query.DefaultBounds))
}

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	cfg = testConfig(t)
	t.Cleanup(func() { cfg = nil })

	a, err := openApp(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	_, err = seedDemo(ctx, a.services, "", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, a.Close())

	target := filepath.Join(t.TempDir(), "snapshot.db.gz")
	require.NoError(t, runBackup(target, true))

	// Data written after the snapshot disappears on restore.
	a = openTestApp(t, cfg)
	_, err = a.services.AdminUsers.Create(ctx, service.AdminUserInput{Email: "late@bakehub.local", Password: "late-password"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	require.NoError(t, runRestore(target, cfg.DB.Path))

	a = openTestApp(t, cfg)
	_, err = a.store.Users().FindByEmail(ctx, demoEmail)
	assert.NoError(t, err)
	_, err = a.store.Users().FindByEmail(ctx, "late@bakehub.local")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
