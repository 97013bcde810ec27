// 文件路径: internal/security/ratelimiter.go
// 模块说明: 这是 internal 模块里的 ratelimiter 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/cache"
)

// RateLimiter counts actions per key inside a fixed window.
type RateLimiter struct {
	store cache.Store
}

// RateResult 描述一次 Allow 的结果。
type RateResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// NewRateLimiter 使用缓存存储构建限流器。
func NewRateLimiter(store cache.Store) (*RateLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limiter requires cache store / 限流器需要缓存存储")
	}
	return &RateLimiter{store: store.Namespace("rate")}, nil
}

// Allow records one hit for key and reports whether it is within limit.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateResult, error) {
	if l == nil {
		return RateResult{}, fmt.Errorf("rate limiter not initialized / 限流器未初始化")
	}
	if limit <= 0 {
		return RateResult{}, fmt.Errorf("limit must be positive / limit 必须为正数")
	}
	if window <= 0 {
		window = time.Minute
	}

	current, err := l.store.Increment(ctx, key, 1, window)
	if err != nil {
		return RateResult{}, fmt.Errorf("rate limit counter / 限流计数失败: %w", err)
	}
	ttl, ok := l.store.TTL(ctx, key)
	if !ok {
		ttl = window
	}

	remaining := limit - int(current)
	if remaining < 0 {
		remaining = 0
	}
	return RateResult{
		Allowed:   current <= int64(limit),
		Remaining: remaining,
		ResetAt:   time.Now().UTC().Add(ttl),
	}, nil
}

// Reset 清除指定 key 的计数。
func (l *RateLimiter) Reset(ctx context.Context, key string) {
	if l == nil {
		return
	}
	l.store.Delete(ctx, key)
}

// Key joins non-empty parts into a limiter key.
func Key(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return strings.Join(out, ":")
}
