// Package user implements the business rules for user management. It is the
// single canonical service behind the HTTP handlers: creation, lookup,
// listing, update, deletion and credential login all go through Service.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zlin-dev/userhub/internal/domain"
	"github.com/zlin-dev/userhub/internal/platform/logger"
	"github.com/zlin-dev/userhub/internal/service/auth"
	"github.com/zlin-dev/userhub/internal/store"
)

// ErrInvalidCredentials is returned by Login for a wrong username or password.
// The two cases are deliberately indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreateInput carries the fields accepted when creating a user.
type CreateInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UpdateInput carries the optional fields accepted when updating a user.
// Nil fields are left unchanged.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
	Status   *string
}

// Service implements the user business rules on top of an injected store.
type Service struct {
	store  store.UserStore
	hasher auth.PasswordHasher
	tokens auth.TokenService

	// verifier is separate from hasher so tests can stub comparison.
	verifier auth.PasswordVerifier
}

// NewService creates a Service with the given collaborators.
func NewService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	tokens auth.TokenService,
) *Service {
	return &Service{
		store:    userStore,
		hasher:   hasher,
		verifier: verifier,
		tokens:   tokens,
	}
}

// Create validates the input, hashes the password and persists a new user.
// Returns store.ErrUsernameExists/ErrEmailExists on duplicates and domain
// validation errors wrapped in store.ErrInvalidEntity on bad input.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	user, err := domain.NewUser(in.Username, in.Email, in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if in.Role != "" {
		user.Role = in.Role
		if err := user.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user created",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// FindByID returns the user with the given id.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Service) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.store.GetByID(ctx, id)
}

// FindAll returns the users matching the filters plus pagination totals.
func (s *Service) FindAll(ctx context.Context, filters store.ListFilters) (*store.ListResult, error) {
	return s.store.List(ctx, filters)
}

// Update applies the non-nil fields of in to the user with the given id.
// Returns store.ErrUserNotFound if the user does not exist, duplicate
// sentinels on collisions, and validation errors wrapped in
// store.ErrInvalidEntity.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*domain.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	if in.Password != nil {
		user.Password = *in.Password
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	if in.Password != nil {
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
	}
	user.Password = ""
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the user with the given id and returns the removed record.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Service) Delete(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user deleted",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// Login verifies the credentials and issues a signed token for the user.
// Returns ErrInvalidCredentials when either the username or the password is
// wrong.
func (s *Service) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}
