package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"videohalls/internal/utils"
)

// User mirrors the 'users' table.
type User struct {
	ID           uint64
	Username     string
	PasswordHash string
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts the user, returning its ID.
// Username uniqueness is enforced by the database; a duplicate maps to
// ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, username, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?,?)",
		username, hash)
	if err != nil {
		msg := strings.ToLower(err.Error())
		// MySQL reports duplicates as error 1062, SQLite as "unique".
		if strings.Contains(msg, "1062") || strings.Contains(msg, "unique") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM users WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}
