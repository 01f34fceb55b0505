// Package postgres provides a Postgres-backed UserStore using database/sql
// over the pgx stdlib driver. Queries are built with squirrel; uniqueness
// violations are translated to the store sentinel errors by inspecting the
// constraint reported by the server.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/zlin-dev/userhub/internal/domain"
	"github.com/zlin-dev/userhub/internal/store"
)

const (
	defaultPageSize = 10

	// Postgres error code for unique_violation.
	uniqueViolation = "23505"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{
	"id", "username", "email", "hashed_password",
	"role", "status", "created_at", "updated_at",
}

// UserStore implements store.UserStore against a users table.
type UserStore struct {
	db *sql.DB
}

var _ store.UserStore = (*UserStore)(nil)

// Open connects to the database at url and verifies the connection.
func Open(ctx context.Context, url string) (*UserStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &UserStore{db: db}, nil
}

// NewUserStore wraps an existing connection pool; used by tests.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Close releases the underlying connection pool.
func (s *UserStore) Close() error { return s.db.Close() }

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	query, args, err := psql.Insert("users").
		Columns("username", "email", "hashed_password", "role", "status", "created_at", "updated_at").
		Values(user.Username, user.Email, user.HashedPassword, user.Role, user.Status, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&user.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getBy(ctx, sq.Eq{"id": id})
}

// GetByUsername implements store.UserStore.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getBy(ctx, sq.Eq{"username": username})
}

// GetByEmail implements store.UserStore.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getBy(ctx, sq.Eq{"email": email})
}

func (s *UserStore) getBy(ctx context.Context, pred sq.Eq) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// List implements store.UserStore.
func (s *UserStore) List(ctx context.Context, filters store.ListFilters) (*store.ListResult, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = defaultPageSize
	}

	where := sq.And{}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		where = append(where, sq.Or{
			sq.Like{"lower(username)": pattern},
			sq.Like{"lower(email)": pattern},
		})
	}

	countQuery := psql.Select("count(*)").From("users")
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
	}
	query, args, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, translateError(err)
	}

	pageQuery := psql.Select(userColumns...).
		From("users").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))
	if len(where) > 0 {
		pageQuery = pageQuery.Where(where)
	}
	query, args, err = pageQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*domain.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translateError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return &store.ListResult{Users: users, Total: total}, nil
}

// Update implements store.UserStore.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	query, args, err := psql.Update("users").
		Set("username", user.Username).
		Set("email", user.Email).
		Set("hashed_password", user.HashedPassword).
		Set("role", user.Role).
		Set("status", user.Status).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// Delete implements store.UserStore.
func (s *UserStore) Delete(ctx context.Context, id int64) (*domain.User, error) {
	query, args, err := psql.Delete("users").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete query: %w", err)
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// translateError maps driver errors onto the store sentinels. Unique
// violations are split by constraint name so callers can report which
// field collided.
func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return store.ErrUsernameExists
		case strings.Contains(pgErr.ConstraintName, "email"):
			return store.ErrEmailExists
		default:
			return store.ErrDuplicate
		}
	}

	return err
}
