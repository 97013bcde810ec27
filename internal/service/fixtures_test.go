package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/creamcroissant/bakehub/internal/auth/token"
	"github.com/creamcroissant/bakehub/internal/cache"
	"github.com/creamcroissant/bakehub/internal/migrations"
	"github.com/creamcroissant/bakehub/internal/notifier"
	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/repository/sqlite"
	"github.com/creamcroissant/bakehub/internal/security"
	"github.com/creamcroissant/bakehub/internal/support/hash"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

var testBounds = query.Bounds{DefaultLimit: 50, MaxLimit: 200}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bakehub.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(db))
	return sqlite.NewStore(db, sqlite.WithQueryBounds(testBounds))
}

func testHasher(t *testing.T) hash.Hasher {
	t.Helper()
	h, err := hash.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func testI18n(t *testing.T) *i18n.Manager {
	t.Helper()
	m, err := i18n.NewManager()
	require.NoError(t, err)
	return m
}

type authFixture struct {
	store *sqlite.Store
	cache cache.Store
	auth  AuthService
	reg   RegistrationService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := openStore(t)
	c := cache.NewStore(cache.Options{})
	rate, err := security.NewRateLimiter(c)
	require.NoError(t, err)
	mgr, err := token.NewManager(token.Options{SigningKey: []byte("test-signing-key"), Issuer: "bakehub"})
	require.NoError(t, err)
	hasher := testHasher(t)
	auth := NewAuthService(AuthOptions{
		Users:     store.Users(),
		Bakers:    store.Bakers(),
		Settings:  store.Settings(),
		LoginLogs: store.LoginLogs(),
		Tokens:    store.Tokens(),
		Hasher:    hasher,
		TokenMgr:  mgr,
		Rate:      rate,
		Cache:     c,
	})
	return &authFixture{
		store: store,
		cache: c,
		auth:  auth,
		reg:   NewRegistrationService(store, hasher, auth, nil, nil),
	}
}

func seedBaker(t *testing.T, store repository.Store, email, slug string, published bool) *repository.Baker {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Unix()
	user, err := store.Users().Create(ctx, &repository.User{Email: email, Password: "x", Name: slug, Status: repository.UserStatusActive, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	baker, err := store.Bakers().Create(ctx, &repository.Baker{
		UserID: user.ID, Slug: slug, BusinessName: "Bakery " + slug, Email: email,
		ThemeName: "classic", Published: published, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return baker
}

// recordingNotifier keeps every email instead of sending it.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifier.EmailRequest
}

func (n *recordingNotifier) SendEmail(_ context.Context, req notifier.EmailRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

func (n *recordingNotifier) emails() []notifier.EmailRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifier.EmailRequest(nil), n.sent...)
}

func intPtr(v int) *int { return &v }
