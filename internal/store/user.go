// Package store defines the persistence contracts consumed by the business
// services, along with the sentinel errors implementations must return.
// Implementations live in subpackages (memory, postgres) and are selected
// via dependency injection at startup.
package store

import (
	"context"

	"github.com/zlin-dev/userhub/internal/domain"
)

// ListFilters narrows and paginates List results.
type ListFilters struct {
	// Page is 1-based; values < 1 are treated as 1.
	Page int
	// Limit caps the page size; values < 1 fall back to the implementation default.
	Limit int
	// Search matches case-insensitively against username and email.
	Search string
}

// ListResult carries one page of users plus the total match count for
// pagination metadata.
type ListResult struct {
	Users []*domain.User
	Total int
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user and assigns its ID.
	// Returns ErrUsernameExists or ErrEmailExists on uniqueness violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns the users matching the filters plus the total match count.
	List(ctx context.Context, filters ListFilters) (*ListResult, error)

	// Update modifies an existing user. The caller provides the complete
	// user including HashedPassword.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrUsernameExists/ErrEmailExists when the update collides with
	// another user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID and returns the removed record.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) (*domain.User, error)
}
