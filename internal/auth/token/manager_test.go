package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Options{SigningKey: []byte("secret"), Issuer: "bakehub", Audience: "bakehub-client", TTL: time.Hour})
	require.NoError(t, err)
	return m
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t)
	raw, issued, err := m.Issue(Subject{UserID: 42, BakerID: 7})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
	assert.EqualValues(t, 7, claims.BakerID)
	assert.False(t, claims.Admin)
	assert.Equal(t, issued.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestParseExpired(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := m.Issue(Subject{UserID: 1})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().UTC() }
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseRejectsForeignKey(t *testing.T) {
	other, err := NewManager(Options{SigningKey: []byte("other"), Issuer: "bakehub", Audience: "bakehub-client"})
	require.NoError(t, err)
	raw, _, err := other.Issue(Subject{UserID: 1, Admin: true})
	require.NoError(t, err)

	_, err = newTestManager(t).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = newTestManager(t).Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRequiresSubject(t *testing.T) {
	_, _, err := newTestManager(t).Issue(Subject{})
	assert.Error(t, err)
	_, err = NewManager(Options{})
	assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
