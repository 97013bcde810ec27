package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/repository/sqlite"
)

func TestRegisterThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.reg.Register(ctx, RegisterInput{
		Email: "Ada@Example.com", Password: "sourdough1", Name: "Ada", BusinessName: "Ada's Cakes & Co",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Email)
	assert.Equal(t, "ada-s-cakes-co", res.BakerSlug)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.RefreshToken)

	login, err := f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "sourdough1"})
	require.NoError(t, err)
	assert.Equal(t, res.BakerID, login.BakerID)

	identity, err := f.auth.Verify(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, login.UserID, identity.UserID)
	assert.Equal(t, login.BakerID, identity.BakerID)
	assert.False(t, identity.IsAdmin)
}

func TestRegisterDerivesFreeSlug(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.reg.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", Name: "A", BusinessName: "Crumb"})
	require.NoError(t, err)
	second, err := f.reg.Register(ctx, RegisterInput{Email: "b@example.com", Password: "password1", Name: "B", BusinessName: "Crumb"})
	require.NoError(t, err)
	assert.Equal(t, "crumb", first.BakerSlug)
	assert.Equal(t, "crumb-2", second.BakerSlug)

	_, err = f.reg.Register(ctx, RegisterInput{Email: "c@example.com", Password: "password1", Name: "C", BusinessName: "Other", Slug: "crumb"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = f.reg.Register(ctx, RegisterInput{Email: "A@example.com", Password: "password1", Name: "A", BusinessName: "Again"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterRejectsUnknownThemeAndClosedSignup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.reg.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", Name: "A", BusinessName: "Crumb", ThemeName: "neon"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, f.store.Settings().Upsert(ctx, &repository.Setting{Key: "registration_enabled", Value: "false", Category: "site"}))
	_, err = f.reg.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", Name: "A", BusinessName: "Crumb"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.reg.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", Name: "A", BusinessName: "Crumb"})
	require.NoError(t, err)
	require.NoError(t, f.store.Settings().Upsert(ctx, &repository.Setting{Key: "password_limit_count", Value: "2", Category: "security"}))

	for i := 0; i < 2; i++ {
		_, err = f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestRefreshTokensAreSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res, err := f.reg.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", Name: "A", BusinessName: "Crumb"})
	require.NoError(t, err)

	next, err := f.auth.Refresh(ctx, res.RefreshToken, ClientMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEqual(t, res.RefreshToken, next.RefreshToken)

	_, err = f.auth.Refresh(ctx, res.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, f.auth.Logout(ctx, next.RefreshToken))
	_, err = f.auth.Refresh(ctx, next.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestVerifyRejectsGarbageAndDisabledUsers(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := f.reg.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", Name: "A", BusinessName: "Crumb"})
	require.NoError(t, err)
	user, err := f.store.Users().FindByID(ctx, res.UserID)
	require.NoError(t, err)
	user.Status = repository.UserStatusDisabled
	require.NoError(t, f.store.Users().Update(ctx, user))

	_, err = f.auth.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

// slugRaceStore loses the slug to another sign-up between the check and the insert.
type slugRaceStore struct {
	*sqlite.Store
}

func (s slugRaceStore) Bakers() repository.BakerRepository {
	return slugRaceBakers{BakerRepository: s.Store.Bakers()}
}

func (s slugRaceStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.WithTx(ctx, func(tx repository.Store) error {
		return fn(slugRaceStore{Store: tx.(*sqlite.Store)})
	})
}

type slugRaceBakers struct {
	repository.BakerRepository
}

func (slugRaceBakers) Create(context.Context, *repository.Baker) (*repository.Baker, error) {
	return nil, repository.ErrConflict
}

func TestRegisterRollsBackUserWhenBakeryFails(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := NewRegistrationService(slugRaceStore{Store: f.store}, testHasher(t), f.auth, nil, nil)

	_, err := reg.Register(ctx, RegisterInput{Email: "late@example.com", Password: "sourdough1", Name: "Late", BusinessName: "Late Loaves"})
	require.ErrorIs(t, err, ErrSlugTaken)

	_, err = f.store.Users().FindByEmail(ctx, "late@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// the address stays free for a retry
	_, err = f.reg.Register(ctx, RegisterInput{Email: "late@example.com", Password: "sourdough1", Name: "Late", BusinessName: "Late Loaves"})
	assert.NoError(t, err)
}
