package memory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlin-dev/userhub/internal/domain"
	"github.com/zlin-dev/userhub/internal/store"
	"github.com/zlin-dev/userhub/internal/store/memory"
)

func newUser(t *testing.T, username, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, email, "secret1")
	require.NoError(t, err)
	user.HashedPassword = "hashed"
	user.Password = ""
	return user
}

func TestUserStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewUserStore()

	user := newUser(t, "alice", "a@x.com")
	require.NoError(t, s.Create(ctx, user))
	assert.Equal(t, int64(1), user.ID)

	got, err := s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byName, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := s.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserStore_DuplicateChecks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewUserStore()
	require.NoError(t, s.Create(ctx, newUser(t, "alice", "a@x.com")))

	err := s.Create(ctx, newUser(t, "alice", "other@x.com"))
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	err = s.Create(ctx, newUser(t, "bob", "a@x.com"))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserStore_GetMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewUserStore()

	_, err := s.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = s.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStore_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewUserStore()
	for i := 0; i < 15; i++ {
		require.NoError(t, s.Create(ctx, newUser(t,
			fmt.Sprintf("user%02d", i), fmt.Sprintf("user%02d@x.com", i))))
	}

	t.Run("default pagination", func(t *testing.T) {
		res, err := s.List(ctx, store.ListFilters{})
		require.NoError(t, err)
		assert.Len(t, res.Users, 10)
		assert.Equal(t, 15, res.Total)
		assert.Equal(t, int64(1), res.Users[0].ID)
	})

	t.Run("second page", func(t *testing.T) {
		res, err := s.List(ctx, store.ListFilters{Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, res.Users, 5)
		assert.Equal(t, int64(11), res.Users[0].ID)
	})

	t.Run("search filters username and email", func(t *testing.T) {
		res, err := s.List(ctx, store.ListFilters{Search: "user01"})
		require.NoError(t, err)
		require.Len(t, res.Users, 1)
		assert.Equal(t, "user01", res.Users[0].Username)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		res, err := s.List(ctx, store.ListFilters{Page: 99, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, res.Users)
		assert.Equal(t, 15, res.Total)
	})
}

func TestUserStore_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewUserStore()

	alice := newUser(t, "alice", "a@x.com")
	require.NoError(t, s.Create(ctx, alice))
	bob := newUser(t, "bob", "b@x.com")
	require.NoError(t, s.Create(ctx, bob))

	t.Run("updates fields", func(t *testing.T) {
		alice.Email = "alice@x.com"
		require.NoError(t, s.Update(ctx, alice))

		got, err := s.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", got.Email)
	})

	t.Run("collision with another user", func(t *testing.T) {
		bob.Username = "alice"
		assert.ErrorIs(t, s.Update(ctx, bob), store.ErrUsernameExists)
	})

	t.Run("missing user", func(t *testing.T) {
		ghost := newUser(t, "ghost", "g@x.com")
		ghost.ID = 12345
		assert.ErrorIs(t, s.Update(ctx, ghost), store.ErrUserNotFound)
	})
}

func TestUserStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewUserStore()

	alice := newUser(t, "alice", "a@x.com")
	require.NoError(t, s.Create(ctx, alice))

	deleted, err := s.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)

	_, err = s.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = s.Delete(ctx, alice.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStore_CloneSemantics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewUserStore()

	alice := newUser(t, "alice", "a@x.com")
	require.NoError(t, s.Create(ctx, alice))

	got, err := s.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	got.Username = "mallory"

	again, err := s.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}
