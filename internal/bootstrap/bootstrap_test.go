package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/config"
	"github.com/creamcroissant/bakehub/internal/notifier"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/repository/sqlite"
)

func TestOpenAndMigrateResolvesSigningKey(t *testing.T) {
	ctx := context.Background()
	db, err := OpenAndMigrate(ctx, config.DBConfig{Path: filepath.Join(t.TempDir(), "nested", "bakehub.db")})
	require.NoError(t, err)
	defer db.Close()
	settings := sqlite.NewStore(db).Settings()

	key, source, err := ResolveJWTSigningKey(ctx, settings, "explicit", time.Now)
	require.NoError(t, err)
	assert.Equal(t, "explicit", key)
	assert.Equal(t, JWTSigningKeySourceConfig, source)

	random := bytes.NewReader(bytes.Repeat([]byte{0xab}, jwtSigningKeyBytes))
	key, source, err = resolveJWTSigningKey(ctx, settings, "change-me", time.Now, random)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", jwtSigningKeyBytes), key)
	assert.Equal(t, JWTSigningKeySourceGenerated, source)

	again, source, err := ResolveJWTSigningKey(ctx, settings, "", time.Now)
	require.NoError(t, err)
	assert.Equal(t, key, again)
	assert.Equal(t, JWTSigningKeySourceSettings, source)
}

type brokenSettings struct {
	repository.SettingRepository
}

func (brokenSettings) Get(context.Context, string) (*repository.Setting, error) {
	return nil, errors.New("disk on fire")
}

func TestResolveJWTSigningKeyErrors(t *testing.T) {
	_, _, err := ResolveJWTSigningKey(context.Background(), nil, "", nil)
	assert.Error(t, err)

	_, _, err = ResolveJWTSigningKey(context.Background(), brokenSettings{}, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAKEHUB_AUTH_SIGNING_KEY")
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(config.DBConfig{Driver: "postgres", Path: "x"})
	assert.Error(t, err)
}

func TestBuildInfrastructure(t *testing.T) {
	cfg := &config.Config{
		Auth:    config.AuthConfig{Issuer: "bakehub", TokenTTL: time.Hour, BcryptCost: 4},
		Storage: config.StorageConfig{Driver: "local", Dir: t.TempDir()},
	}
	infra, err := BuildInfrastructure(cfg, "secret", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "local", infra.Storage.Name())
	assert.IsType(t, &notifier.LoggerService{}, infra.Mailer)

	require.NoError(t, infra.Notifier.SendEmail(context.Background(), notifier.EmailRequest{To: "a@b.co"}))
	assert.Equal(t, 1, infra.Queue.PendingEmails())

	_, err = BuildInfrastructure(cfg, "", nil)
	assert.Error(t, err)
}
