package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

func TestAdminUserDisableRevokesSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admins := NewAdminUserService(AdminUserOptions{Store: f.store, Hasher: testHasher(t), Bounds: testBounds})

	root, err := admins.Create(ctx, AdminUserInput{Email: "root@example.com", Password: "password1", IsAdmin: true})
	require.NoError(t, err)
	_, err = admins.Create(ctx, AdminUserInput{Email: "ROOT@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailExists)

	res, err := f.reg.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", Name: "A", BusinessName: "Crumb"})
	require.NoError(t, err)

	_, err = admins.SetStatus(ctx, root.ID, root.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := admins.SetStatus(ctx, root.ID, res.UserID, false)
	require.NoError(t, err)
	assert.Equal(t, repository.UserStatusDisabled, view.Status)

	_, err = f.auth.Refresh(ctx, res.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrAccountDisabled)

	_, err = admins.SetStatus(ctx, root.ID, res.UserID, true)
	require.NoError(t, err)
	require.NoError(t, admins.ResetPassword(ctx, root.ID, res.UserID, "new-password"))
	_, err = f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "new-password"})
	assert.NoError(t, err)
	assert.ErrorIs(t, admins.ResetPassword(ctx, root.ID, res.UserID, "short"), ErrInvalidInput)

	page, err := admins.List(ctx, query.Translate(query.Request{"isAdmin": "yes"}))
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "root@example.com", page.Data[0].Email)
}

func TestAdminSettings(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	settings := NewAdminSettingsService(AdminSettingsOptions{Settings: store.Settings()})

	got, err := settings.Get(ctx, "registration_enabled")
	require.NoError(t, err)
	assert.Equal(t, "true", got.Value)

	set, err := settings.Set(ctx, 1, "registration_enabled", "off")
	require.NoError(t, err)
	assert.Equal(t, "false", set.Value)

	_, err = settings.Set(ctx, 1, "password_limit_count", "many")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = settings.Set(ctx, 1, "unknown_key", "1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = settings.Set(ctx, 1, SettingSigningKey, "x")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, store.Settings().Upsert(ctx, &repository.Setting{Key: SettingSigningKey, Value: "abcdef123456", Category: "security"}))
	list, err := settings.List(ctx)
	require.NoError(t, err)
	for _, item := range list {
		if item.Key == SettingSigningKey {
			assert.Equal(t, "********3456", item.Value)
			assert.True(t, item.Secret)
		}
	}
}

func TestAdminCatalogThemes(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	catalog := NewAdminCatalogService(store, nil, nil, testBounds)
	seedBaker(t, store, "a@example.com", "alpha", false)

	theme, err := catalog.CreateTheme(ctx, ThemeInput{Name: "matcha", DisplayName: "Matcha", PrimaryColor: "#7ba05b", AccentColor: "#fff8e7"})
	require.NoError(t, err)
	_, err = catalog.CreateTheme(ctx, ThemeInput{Name: "bad", DisplayName: "Bad", PrimaryColor: "green", AccentColor: "#fff"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = catalog.UpdateTheme(ctx, theme.ID, ThemeInput{Name: "renamed", DisplayName: "x", PrimaryColor: "#000000", AccentColor: "#ffffff"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	classic, err := store.Themes().FindByName(ctx, "classic")
	require.NoError(t, err)
	assert.ErrorIs(t, catalog.DeleteTheme(ctx, classic.ID), ErrConflict)
	assert.NoError(t, catalog.DeleteTheme(ctx, theme.ID))

	written, err := catalog.ImportThemes(ctx, []ThemeInput{
		{Name: "lemon", DisplayName: "Lemon", PrimaryColor: "#fff44f", AccentColor: "#333333"},
		{Name: "classic", DisplayName: "Classic II", PrimaryColor: "#6b4226", AccentColor: "#f3e5ab"},
		{Name: "", DisplayName: "Nameless", PrimaryColor: "#000000", AccentColor: "#000000"},
	})
	assert.Equal(t, 2, written)
	assert.ErrorIs(t, err, ErrInvalidInput)
	classic, err = store.Themes().FindByName(ctx, "classic")
	require.NoError(t, err)
	assert.Equal(t, "Classic II", classic.DisplayName)

	bakers, err := catalog.ListBakers(ctx, query.Descriptor{})
	require.NoError(t, err)
	require.Len(t, bakers.Data, 1)
	published, err := catalog.SetBakerPublished(ctx, bakers.Data[0].ID, true)
	require.NoError(t, err)
	assert.True(t, published.Published)
}

type fixedQueue struct{}

func (fixedQueue) PendingEmails() int { return 3 }
func (fixedQueue) Dropped() int       { return 1 }

func TestAdminSystemStatus(t *testing.T) {
	store := openStore(t)
	seedBaker(t, store, "a@example.com", "alpha", true)
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewAdminSystemService(AdminSystemOptions{
		Version:           "1.2.3",
		StartedAt:         started,
		NotificationQueue: fixedQueue{},
		Store:             store,
		Now:               func() time.Time { return started.Add(90 * time.Second) },
		HostnameResolver:  func() (string, error) { return "oven-1", nil },
		Host: &HostStatFetcher{
			CPUPercent:    func(time.Duration, bool) ([]float64, error) { return []float64{12.5}, nil },
			VirtualMemory: func() (*mem.VirtualMemoryStat, error) { return &mem.VirtualMemoryStat{Total: 100, Used: 40}, nil },
			LoadAvg:       func() (*load.AvgStat, error) { return nil, errors.New("unsupported") },
			HostUptime:    func() (uint64, error) { return 3600, nil },
		},
	})

	status, err := svc.SystemStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "development", status.Environment)
	assert.Equal(t, "oven-1", status.Hostname)
	assert.EqualValues(t, 90, status.Uptime)
	assert.EqualValues(t, 1, status.UserCount)
	assert.EqualValues(t, 1, status.BakerCount)
	assert.Equal(t, AdminQueueStatus{PendingEmails: 3, DroppedEmails: 1}, status.Queue)
	assert.Equal(t, 12.5, status.Host.CPUPercent)
	assert.EqualValues(t, 40, status.Host.MemUsed)
	assert.Zero(t, status.Host.Load1)
	assert.EqualValues(t, 3600, status.Host.Uptime)
}
