package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlin-dev/userhub/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user gets defaults", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("alice", "a@x.com", "secret1")
		require.NoError(t, err)

		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "a@x.com", user.Email)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.Equal(t, domain.StatusActive, user.Status)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"empty username", "", "a@x.com", "secret1", domain.ErrEmptyUsername},
		{"short username", "ab", "a@x.com", "secret1", domain.ErrUsernameTooShort},
		{"long username", strings.Repeat("a", 31), "a@x.com", "secret1", domain.ErrUsernameTooLong},
		{"empty email", "alice", "", "secret1", domain.ErrEmptyEmail},
		{"invalid email", "alice", "not-an-email", "secret1", domain.ErrInvalidEmail},
		{"empty password", "alice", "a@x.com", "", domain.ErrEmptyPassword},
		{"short password", "alice", "a@x.com", "12345", domain.ErrPasswordTooShort},
		{"long password", "alice", "a@x.com", strings.Repeat("p", 73), domain.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := domain.NewUser(tt.username, tt.email, tt.password)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserValidate_ExistingUser(t *testing.T) {
	t.Parallel()

	t.Run("hash only is valid", func(t *testing.T) {
		t.Parallel()

		user := &domain.User{
			Username:       "alice",
			Email:          "a@x.com",
			HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
			Role:           domain.RoleAdmin,
			Status:         domain.StatusActive,
		}
		assert.NoError(t, user.Validate())
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		t.Parallel()

		user := &domain.User{
			Username:       "alice",
			Email:          "a@x.com",
			HashedPassword: "hash",
			Role:           "superuser",
		}
		assert.ErrorIs(t, user.Validate(), domain.ErrInvalidRole)
	})
}
