package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
)

type UserRepository interface {
	WithDB(db db.DB) UserRepository
	CreateUser(ctx context.Context, user model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) CreateUser(ctx context.Context, user model.User) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r userRepository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getUser(ctx, "username", username)
}

func (r userRepository) getUser(ctx context.Context, column string, value any) (model.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, password_hash, first_name, last_name, created_at
		FROM users
		WHERE `+column+` = $1
	`, value)
	if err != nil {
		return model.User{}, fmt.Errorf("select user by %s: %w", column, err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[model.User])
	if err != nil {
		if db.IsNoRows(err) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("collect user: %w", err)
	}

	return user, nil
}
