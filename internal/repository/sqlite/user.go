package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/model"
	"github.com/P-cyber162/PhotoVault-API/internal/repository"
)

// UserStore implements repository.UserRepository on SQLite.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, username, email, password_hash, role,
	reset_token_hash, reset_token_expires, created_at, updated_at`

// Create inserts a new user. The caller provides Username, Email,
// PasswordHash and Role; ID and timestamps are assigned here. Uniqueness
// violations on username or email surface as apperror.ErrConflict.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already taken")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getOne(ctx, `WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email. Emails are stored lowercase; the
// service normalizes before calling.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getOne(ctx, `WHERE email = ?`, email)
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getOne(ctx, `WHERE username = ?`, username)
}

// GetByResetTokenHash finds the user holding an unexpired reset token with
// the given hash. Expired tokens never match — the expiry comparison is
// part of the query, so "valid" and "exists" are one atomic check.
func (s *UserStore) GetByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	return s.getOne(ctx,
		`WHERE reset_token_hash = ? AND reset_token_expires > ?`,
		tokenHash, time.Now().UTC(),
	)
}

func (s *UserStore) getOne(ctx context.Context, where string, args ...any) (*model.User, error) {
	var u model.User

	err := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where, args...,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.ResetTokenHash,
		&u.ResetTokenExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(args[0]))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// List returns users ordered by creation time, newest first.
func (s *UserStore) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.ResetTokenHash,
			&u.ResetTokenExpires,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Update persists the mutable fields of a user record, including clearing
// or setting the reset-token pair. The password hash is written as-is —
// hashing happened in the service before this call.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`UPDATE users
		 SET username = ?, email = ?, password_hash = ?, role = ?,
		     reset_token_hash = ?, reset_token_expires = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ResetTokenHash,
		user.ResetTokenExpires,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already taken")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// Delete removes a user. Owned photos and albums cascade at the schema level.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
