package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/contacts-api/internal/model"
	"github.com/iliyamo/contacts-api/internal/utils"
)

// UserRepo persists user records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,confirmed,COALESCE(avatar,''),COALESCE(refresh_token,''),created_at,updated_at"

// Create inserts a new user with a freshly hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)",
		username, email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Confirmed,
		&u.Avatar, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdateRefreshToken stores the given refresh token on the user record,
// replacing whatever was there.  Used on login, where any previous session
// is superseded unconditionally.
func (r *UserRepo) UpdateRefreshToken(ctx context.Context, email, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE email=?", token, email)
	return err
}

// RotateRefreshToken atomically swaps current for next in a single
// conditional UPDATE.  It reports false when the stored token no longer
// equals current, which means the presented token was already used or the
// session was revoked.  The compare and the write happen in one statement
// so two concurrent rotations of the same token cannot both succeed.
func (r *UserRepo) RotateRefreshToken(ctx context.Context, email, current, next string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE email=? AND refresh_token=?",
		next, email, current)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ClearRefreshToken removes the stored refresh token, terminating the
// user's session.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=NULL WHERE email=?", email)
	return err
}

// ConfirmEmail marks the account as confirmed.  Confirming an already
// confirmed account is a no-op at the SQL level.
func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET confirmed=1 WHERE email=?", email)
	return err
}

// UpdateAvatar stores the avatar URL and returns the refreshed record.
func (r *UserRepo) UpdateAvatar(ctx context.Context, email, url string) (model.User, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar=? WHERE email=?", url, email); err != nil {
		return model.User{}, err
	}
	return r.GetByEmail(ctx, email)
}
