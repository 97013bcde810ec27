package security

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/cache"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter, err := NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	ctx := context.Background()
	key := Key("inquiry", "sweet-buns", "10.0.0.1")

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}
	res, err := limiter.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)

	limiter.Reset(ctx, key)
	res, err = limiter.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiterRejectsBadLimit(t *testing.T) {
	limiter, err := NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "k", 0, time.Minute)
	assert.Error(t, err)

	_, err = NewRateLimiter(nil)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "login:bob@example.com", Key("login", " ", "Bob@Example.com"))
}

func TestLoggerRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLoggerRecorder(slog.New(slog.NewTextHandler(&buf, nil)))
	rec.Record(context.Background(), Event{Kind: EventLogin, ActorID: 7, IP: "127.0.0.1"})
	assert.Contains(t, buf.String(), "kind=auth.login")
	assert.Contains(t, buf.String(), "actor_id=7")
}
