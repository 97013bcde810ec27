package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	root := NewStore(Options{})
	a := root.Namespace("a")
	b := root.Namespace("b")

	a.Set(ctx, "k", "va", 0)
	b.Set(ctx, "k", "vb", 0)

	got, ok := a.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "va", got)

	a.Purge(ctx)
	_, ok = a.Get(ctx, "k")
	assert.False(t, ok)
	_, ok = b.Get(ctx, "k")
	assert.True(t, ok)
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()
	s := NewStore(Options{})
	n, err := s.Increment(ctx, "hits", 1, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = s.Increment(ctx, "hits", 2, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	ttl, ok := s.TTL(ctx, "hits")
	require.True(t, ok)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	s := NewStore(Options{})
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"classic", "pastel"}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := Remember(ctx, s, "themes", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"classic", "pastel"}, got)
	}
	assert.Equal(t, 1, calls)

	_, err := Remember(ctx, s, "broken", time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	assert.Error(t, err)
}
