package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

// JWTSigningKeySource tells where the signing key came from.
type JWTSigningKeySource string

const (
	defaultJWTSigningKey    = "change-me"
	jwtSigningKeySettingKey = "auth_signing_key"
	jwtSigningKeyCategory   = "security"
	jwtSigningKeyBytes      = 32

	JWTSigningKeySourceConfig    JWTSigningKeySource = "config"
	JWTSigningKeySourceSettings  JWTSigningKeySource = "settings"
	JWTSigningKeySourceGenerated JWTSigningKeySource = "generated"
)

const signingKeyHint = "you can set BAKEHUB_AUTH_SIGNING_KEY"

// ResolveJWTSigningKey picks the signing key: explicit config wins, then the
// settings table, otherwise a random key is generated and persisted.
func ResolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, now func() time.Time) (string, JWTSigningKeySource, error) {
	return resolveJWTSigningKey(ctx, settings, configuredKey, now, rand.Reader)
}

func resolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, now func() time.Time, random io.Reader) (string, JWTSigningKeySource, error) {
	if key := strings.TrimSpace(configuredKey); key != "" && key != defaultJWTSigningKey {
		return key, JWTSigningKeySourceConfig, nil
	}
	if settings == nil {
		return "", "", fmt.Errorf("resolve jwt signing key: settings store is required; %s", signingKeyHint)
	}
	if now == nil {
		now = time.Now
	}

	existing, err := settings.Get(ctx, jwtSigningKeySettingKey)
	switch {
	case err == nil && strings.TrimSpace(existing.Value) != "":
		return strings.TrimSpace(existing.Value), JWTSigningKeySourceSettings, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return "", "", fmt.Errorf("read jwt signing key: %w; %s", err, signingKeyHint)
	}

	buf := make([]byte, jwtSigningKeyBytes)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", "", fmt.Errorf("generate jwt signing key: %w; %s", err, signingKeyHint)
	}
	generated := hex.EncodeToString(buf)
	if err := settings.Upsert(ctx, &repository.Setting{
		Key:       jwtSigningKeySettingKey,
		Value:     generated,
		Category:  jwtSigningKeyCategory,
		UpdatedAt: now().Unix(),
	}); err != nil {
		return "", "", fmt.Errorf("persist jwt signing key: %w; %s", err, signingKeyHint)
	}
	return generated, JWTSigningKeySourceGenerated, nil
}
