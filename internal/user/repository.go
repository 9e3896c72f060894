package user

import (
	"context"
	"database/sql"
	"log/slog"

	"birthchart-server/internal/shared/database"
	"birthchart-server/internal/shared/errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Store is the persistence the user service needs.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type Repository struct {
	db database.Executor
}

func NewRepository(db database.Executor) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, email, display_name, avatar_url, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u and fills in its generated fields. A duplicate username or
// email yields ErrUserAlreadyExists.
func (r *Repository) Create(ctx context.Context, u *User) error {
	logger := slog.With(
		"component", "user_repository",
		"operation", "create",
		"username", u.Username,
	)
	logger.Debug("Creating user")

	query := `
		INSERT INTO users (username, email, display_name, avatar_url, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, u.Username, u.Email, u.DisplayName, u.AvatarURL, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errors.WrapConflict("username or email already registered", ErrUserAlreadyExists)
		}
		return errors.WrapInternal("failed to create user", err)
	}

	logger.Info("User created", "user_id", u.ID)
	return nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.WrapNotFound("user not found", ErrUserNotFound)
		}
		return nil, errors.WrapInternal("failed to find user by email", err)
	}
	return u, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.WrapNotFound("user not found", ErrUserNotFound)
		}
		return nil, errors.WrapInternal("failed to get user", err)
	}
	return u, nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, errors.WrapInternal("failed to check username", err)
	}
	return exists, nil
}
