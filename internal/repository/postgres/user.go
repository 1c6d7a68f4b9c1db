package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

type credentialRow struct {
	model.User
	PasswordHash string `db:"password_hash"`
}

func (r *userRepository) Create(ctx context.Context, user *model.User, passwordHash string) error {
	query := `
		INSERT INTO users (username, type, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Type, passwordHash).
		Scan(&user.ID, &user.CreatedAt)
	return translate(err, "create user")
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, username, type, created_at FROM users WHERE id = $1`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetCredentials(ctx context.Context, username string) (*model.User, string, error) {
	query := `SELECT id, username, type, created_at, password_hash FROM users WHERE lower(username) = lower($1)`
	var row credentialRow
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", repository.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get credentials: %w", err)
	}
	return &row.User, row.PasswordHash, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET username = $1, type = $2
		WHERE id = $3
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Type, user.ID).Scan(&user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return translate(err, "update user")
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res)
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	query := `SELECT id, username, type, created_at FROM users`
	var args []interface{}
	if filter.Role != "" {
		query += ` WHERE type = $1`
		args = append(args, filter.Role)
	}
	query += ` ORDER BY id`

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
