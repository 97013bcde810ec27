// Package cache provides the in-process cache shared by rate limiting,
// login throttling and the public showcase.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store 是带命名空间的内存缓存接口。
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Get(ctx context.Context, key string) (any, bool)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string)
	TTL(ctx context.Context, key string) (time.Duration, bool)
	// Increment adds delta to the counter at key, creating it with ttl when absent.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
	// Purge drops every key inside this namespace.
	Purge(ctx context.Context)
	Namespace(prefix string) Store
}

// Options 配置内存缓存。
type Options struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	Prefix          string
}

// NewStore builds a go-cache backed Store.
func NewStore(opts Options) Store {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = ttl
	}
	return &memoryStore{
		backend:    gocache.New(ttl, cleanup),
		defaultTTL: ttl,
		prefix:     joinPrefixes(opts.Prefix),
	}
}

// Remember returns the cached JSON value at key, or calls load and caches its result.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if ok, err := s.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := s.SetJSON(ctx, key, value, ttl); err != nil {
		return value, err
	}
	return value, nil
}

type memoryStore struct {
	backend    *gocache.Cache
	defaultTTL time.Duration
	prefix     string
}

func (s *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) {
	s.backend.Set(s.key(key), value, s.ttl(ttl))
}

func (s *memoryStore) Get(_ context.Context, key string) (any, bool) {
	return s.backend.Get(s.key(key))
}

func (s *memoryStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	s.Set(ctx, key, data, ttl)
	return nil
}

func (s *memoryStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("cache: %s holds %T, not json", key, raw)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) {
	s.backend.Delete(s.key(key))
}

func (s *memoryStore) TTL(_ context.Context, key string) (time.Duration, bool) {
	_, exp, ok := s.backend.GetWithExpiration(s.key(key))
	if !ok || exp.IsZero() {
		return 0, false
	}
	remain := time.Until(exp)
	if remain <= 0 {
		return 0, false
	}
	return remain, true
}

func (s *memoryStore) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	k := s.key(key)
	if err := s.backend.Add(k, delta, s.ttl(ttl)); err == nil {
		return delta, nil
	}
	current, err := s.backend.IncrementInt64(k, delta)
	if err != nil {
		return 0, fmt.Errorf("cache: increment %s: %w", key, err)
	}
	return current, nil
}

func (s *memoryStore) Purge(_ context.Context) {
	if s.prefix == "" {
		s.backend.Flush()
		return
	}
	for k := range s.backend.Items() {
		if strings.HasPrefix(k, s.prefix+":") {
			s.backend.Delete(k)
		}
	}
}

func (s *memoryStore) Namespace(prefix string) Store {
	return &memoryStore{
		backend:    s.backend,
		defaultTTL: s.defaultTTL,
		prefix:     joinPrefixes(s.prefix, prefix),
	}
}

func (s *memoryStore) key(key string) string {
	key = strings.TrimSpace(key)
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *memoryStore) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.defaultTTL
	}
	return ttl
}

func joinPrefixes(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, ": "); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}
