package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations. It is inspected here and nowhere else; the rest of the
// application sees ErrDuplicateUser.
const pgUniqueViolation = "23505"

var (
	// ErrDuplicateUser is returned by CreateUser when the username or
	// email collides with an existing row.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound is returned when no row matches the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// NewUser holds the columns written when creating a user.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserStore is the persistence boundary for the auth flows. The service
// depends on this interface rather than a connection pool so it can be
// exercised against an in-memory implementation.
type UserStore interface {
	CreateUser(ctx context.Context, params NewUser) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateRefreshTokenHash(ctx context.Context, userID, refreshTokenHash string) error
}

// PostgresUserStore implements UserStore on a pgx connection pool.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a PostgresUserStore.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// CreateUser inserts a new user with a server-generated identity. A
// unique-constraint violation on username or email comes back as
// ErrDuplicateUser; the database arbitrates concurrent registrations
// racing on the same values.
func (s *PostgresUserStore) CreateUser(ctx context.Context, params NewUser) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
	}

	query := `INSERT INTO users (id, username, email, password_hash)
              VALUES ($1, $2, $3, $4)
              RETURNING created_at`
	err := s.pool.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w (%s)", ErrDuplicateUser, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by exact username match.
func (s *PostgresUserStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password_hash, refresh_token_hash, created_at
              FROM users
              WHERE username = $1`
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.RefreshTokenHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user by username: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by identity.
func (s *PostgresUserStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password_hash, refresh_token_hash, created_at
              FROM users
              WHERE id = $1`
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.RefreshTokenHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	return &user, nil
}

// UpdateRefreshTokenHash overwrites the user's stored refresh token hash,
// invalidating any previously issued refresh token.
func (s *PostgresUserStore) UpdateRefreshTokenHash(ctx context.Context, userID, refreshTokenHash string) error {
	query := `UPDATE users SET refresh_token_hash = $2 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, userID, refreshTokenHash)
	if err != nil {
		return fmt.Errorf("failed to update refresh token hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
