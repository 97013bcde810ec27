package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/creamcroissant/bakehub/internal/migrations"
	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bakehub.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(db))
	return NewStore(db, opts...)
}

func seedBaker(t *testing.T, store *Store, email, slug string) *repository.Baker {
	t.Helper()
	ctx := context.Background()
	user, err := store.Users().Create(ctx, &repository.User{Email: email, Password: "x", Status: repository.UserStatusActive})
	require.NoError(t, err)
	baker, err := store.Bakers().Create(ctx, &repository.Baker{UserID: user.ID, Slug: slug, BusinessName: slug, ThemeName: "classic"})
	require.NoError(t, err)
	return baker
}

func TestUserRepo_CreateFindUpdate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.Users().Create(ctx, &repository.User{Email: " Ada@Example.com ", Password: "hash", Name: "Ada", Status: repository.UserStatusActive})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := store.Users().FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Nil(t, found.LastLoginAt)

	login := int64(1700000000)
	found.LastLoginAt = &login
	found.Status = repository.UserStatusDisabled
	found.UpdatedAt = login
	require.NoError(t, store.Users().Update(ctx, found))

	again, err := store.Users().FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, again.LastLoginAt)
	assert.Equal(t, login, *again.LastLoginAt)
	assert.Equal(t, repository.UserStatusDisabled, again.Status)

	_, err = store.Users().Create(ctx, &repository.User{Email: "ada@example.com", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = store.Users().FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestThemes_SeededAndSortedByAlias(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	desc := query.Translate(query.Request{"sort": "-theme_name"})
	themes, total, err := store.Themes().List(ctx, repository.ListQuery{Descriptor: desc})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, themes, 4)
	assert.Equal(t, "rustic", themes[0].Name)
	assert.Equal(t, "classic", themes[3].Name)

	featured, total, err := store.Themes().List(ctx, repository.ListQuery{Descriptor: query.Translate(query.Request{"featured": "true"})})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, theme := range featured {
		assert.True(t, theme.Featured)
	}
}

func TestGallery_ListScopedFilteredAndPaged(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := seedBaker(t, store, "alice@example.com", "alice-cakes")
	bob := seedBaker(t, store, "bob@example.com", "bobs-buns")

	for i, cat := range []string{"wedding", "wedding", "birthday", "wedding"} {
		_, err := store.Gallery().Create(ctx, &repository.GalleryItem{
			BakerID:   alice.ID,
			Title:     cat,
			Category:  cat,
			Featured:  i%2 == 0,
			Sort:      int64(i),
			CreatedAt: int64(1000 + i),
		})
		require.NoError(t, err)
	}
	_, err := store.Gallery().Create(ctx, &repository.GalleryItem{BakerID: bob.ID, Title: "x", Category: "wedding", Featured: true})
	require.NoError(t, err)

	desc := query.Translate(query.Request{"category": "wedding", "featured": "true", "sort": "-created_date"})
	items, total, err := store.Gallery().List(ctx, repository.ForBaker(alice.ID, desc))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.EqualValues(t, 1000, items[0].CreatedAt)

	desc = query.Translate(query.Request{"sort": "-created_date", "limit": "2", "offset": "1"})
	items, total, err = store.Gallery().List(ctx, repository.ForBaker(alice.ID, desc))
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, items, 2)
	assert.EqualValues(t, 1002, items[0].CreatedAt)
	assert.EqualValues(t, 1001, items[1].CreatedAt)
}

func TestList_RejectsTenantOverrideAndUnknownFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := seedBaker(t, store, "alice@example.com", "alice-cakes")

	_, _, err := store.Orders().List(ctx, repository.ForBaker(alice.ID, query.Translate(query.Request{"baker_id": "2"})))
	assert.ErrorIs(t, err, repository.ErrInvalidQuery)
	assert.ErrorIs(t, err, query.ErrUnknownField)

	_, _, err = store.Users().List(ctx, repository.ListQuery{Descriptor: query.Translate(query.Request{"password": "x"})})
	assert.ErrorIs(t, err, repository.ErrInvalidQuery)
}

func TestList_BoundsClampLimit(t *testing.T) {
	store := openTestStore(t, WithQueryBounds(query.Bounds{DefaultLimit: 2, MaxLimit: 3}))
	ctx := context.Background()
	alice := seedBaker(t, store, "alice@example.com", "alice-cakes")
	for i := 0; i < 5; i++ {
		_, err := store.Customers().Create(ctx, &repository.Customer{BakerID: alice.ID, Name: "c"})
		require.NoError(t, err)
	}

	items, total, err := store.Customers().List(ctx, repository.ForBaker(alice.ID, query.Translate(query.Request{})))
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, items, 2)

	items, _, err = store.Customers().List(ctx, repository.ForBaker(alice.ID, query.Translate(query.Request{"limit": "100", "offset": "-4"})))
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestOrders_ScopedWritesAndStatusCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := seedBaker(t, store, "alice@example.com", "alice-cakes")
	bob := seedBaker(t, store, "bob@example.com", "bobs-buns")

	order, err := store.Orders().Create(ctx, &repository.Order{BakerID: alice.ID, Reference: "REF1", Title: "Tiered cake", Status: repository.OrderStatusPending, Quantity: 1})
	require.NoError(t, err)
	_, err = store.Orders().Create(ctx, &repository.Order{BakerID: alice.ID, Reference: "REF2", Title: "Cupcakes", Status: repository.OrderStatusPending, Quantity: 24})
	require.NoError(t, err)

	_, err = store.Orders().FindByID(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Orders().Delete(ctx, bob.ID, order.ID), repository.ErrNotFound)

	order.Status = repository.OrderStatusConfirmed
	require.NoError(t, store.Orders().Update(ctx, order))

	counts, err := store.Orders().CountByStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []repository.OrderStatusCount{
		{Status: repository.OrderStatusConfirmed, Count: 1},
		{Status: repository.OrderStatusPending, Count: 1},
	}, counts)

	byRef, err := store.Orders().FindByReference(ctx, "REF2")
	require.NoError(t, err)
	assert.Equal(t, 24, byRef.Quantity)
}

func TestMessages_ReadFlag(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := seedBaker(t, store, "alice@example.com", "alice-cakes")

	msg, err := store.Messages().Create(ctx, &repository.Message{BakerID: alice.ID, SenderName: "Sam", SenderEmail: "sam@example.com", Body: "hello"})
	require.NoError(t, err)

	unread, err := store.Messages().CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, store.Messages().MarkRead(ctx, alice.ID, msg.ID, true, 10))
	items, total, err := store.Messages().List(ctx, repository.ForBaker(alice.ID, query.Translate(query.Request{"read": "true"})))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.True(t, items[0].Read)
}

func TestTokens_DeleteExpired(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := seedBaker(t, store, "alice@example.com", "alice-cakes")

	_, err := store.Tokens().Create(ctx, &repository.AccessToken{UserID: alice.UserID, RefreshToken: "old", RefreshExpiresAt: 100})
	require.NoError(t, err)
	_, err = store.Tokens().Create(ctx, &repository.AccessToken{UserID: alice.UserID, RefreshToken: "fresh", RefreshExpiresAt: 5000})
	require.NoError(t, err)

	removed, err := store.Tokens().DeleteExpired(ctx, 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = store.Tokens().FindByRefreshToken(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	fresh, err := store.Tokens().FindByRefreshToken(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, fresh.UserID)
}

func TestWithTx_CommitAndRollback(t *testing.T) {
	store := openTestStore(t, WithQueryBounds(query.Bounds{DefaultLimit: 1, MaxLimit: 1}))
	ctx := context.Background()
	baker := seedBaker(t, store, "tx@example.com", "tx")
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx repository.Store) error {
		_, err := tx.Customers().Create(ctx, &repository.Customer{BakerID: baker.ID, Name: "Rolled back", Email: "gone@example.com"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, err = store.Customers().FindByEmail(ctx, baker.ID, "gone@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = store.WithTx(ctx, func(tx repository.Store) error {
		for _, email := range []string{"a@example.com", "b@example.com"} {
			if _, err := tx.Customers().Create(ctx, &repository.Customer{BakerID: baker.ID, Name: email, Email: email}); err != nil {
				return err
			}
		}
		// nested calls join the open transaction
		return tx.WithTx(ctx, func(inner repository.Store) error {
			items, total, err := inner.Customers().List(ctx, repository.ForBaker(baker.ID, query.Descriptor{}))
			require.NoError(t, err)
			assert.EqualValues(t, 2, total)
			assert.Len(t, items, 1, "bounds carry into the transaction")
			return nil
		})
	})
	require.NoError(t, err)

	_, total, err := store.Customers().List(ctx, repository.ForBaker(baker.ID, query.Descriptor{}))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
