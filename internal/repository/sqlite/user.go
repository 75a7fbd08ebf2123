package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, username, email, full_name, avatar_url, bio, password_hash,
	password_strength, is_verified, github_id, last_login, created_at, updated_at`

// Create inserts user, filling in ID (unless the caller set one) and the
// timestamps. A taken email or GitHub id returns apperror.ErrConflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.AvatarURL,
		user.Bio,
		user.PasswordHash,
		user.PasswordStrength,
		user.IsVerified,
		nullGitHubID(user.GitHubID),
		nullTime(user.LastLogin),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return conflictFor(err)
		}
		return fmt.Errorf("sqlite: creating user %s: %w", user.Email, err)
	}

	return nil
}

// GetByID returns apperror.ErrNotFound when no user has id.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := u.getOne(ctx, `WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetByEmail matches case-insensitively.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := u.getOne(ctx, `WHERE email = ?`, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage(fmt.Sprintf("user not found with email %s", email))
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

func (u *UserDB) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	user, err := u.getOne(ctx, `WHERE github_id = ?`, githubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
		}
		return nil, fmt.Errorf("sqlite: getting user by github id %d: %w", githubID, err)
	}
	return user, nil
}

// Update writes every column of user except id and created_at, and bumps
// updated_at.
func (u *UserDB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := u.conn.ExecContext(ctx,
		`UPDATE users SET
			username = ?, email = ?, full_name = ?, avatar_url = ?, bio = ?,
			password_hash = ?, password_strength = ?, is_verified = ?,
			github_id = ?, last_login = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Email,
		user.FullName,
		user.AvatarURL,
		user.Bio,
		user.PasswordHash,
		user.PasswordStrength,
		user.IsVerified,
		nullGitHubID(user.GitHubID),
		nullTime(user.LastLogin),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return conflictFor(err)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// List returns users oldest first. A zero Limit means no limit.
func (u *UserDB) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := u.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at ASC, id ASC
		 LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

func (u *UserDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := u.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

func (u *UserDB) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg)
	return scanUser(row)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		user      model.User
		githubID  sql.NullInt64
		lastLogin sql.NullTime
	)
	err := s.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.AvatarURL,
		&user.Bio,
		&user.PasswordHash,
		&user.PasswordStrength,
		&user.IsVerified,
		&githubID,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if githubID.Valid {
		user.GitHubID = githubID.Int64
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return &user, nil
}

func nullGitHubID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// conflictFor names the column from a UNIQUE failure message such as
// "UNIQUE constraint failed: users.email".
func conflictFor(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return apperror.Conflict("email", "Email already registered")
	case strings.Contains(msg, "users.github_id"):
		return apperror.Conflict("githubId", "GitHub account already linked to another user")
	default:
		return apperror.Conflict("id", "user already exists")
	}
}
