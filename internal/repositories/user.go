// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt" // パスワードのハッシュ化用

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/database"
	"task-manager-api/internal/models"
)

// UserRepository はデータベース操作を行うための構造体です。
type UserRepository struct {
	DB      *sql.DB
	Dialect database.Dialect
}

// NewUserRepository は新しいUserRepositoryインスタンスを作成します。
func NewUserRepository(db *sql.DB, dialect database.Dialect) *UserRepository {
	return &UserRepository{DB: db, Dialect: dialect}
}

// HashPassword は与えられたパスワードをbcryptでハッシュ化します。
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// VerifyPassword はハッシュ化されたパスワードと平文のパスワードを比較します。
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

var ErrUserNotFound = apperror.NotFound("user not found")

// Create は新しいユーザーをデータベースに挿入します。
// username や email の重複はドライバのエラーのまま返し、分類器が 409 にします。
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := "INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)"

	if r.Dialect.SupportsReturning() {
		err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query+" RETURNING id, created_at"),
			u.Username, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("could not insert user: %w", err)
		}
		return u, nil
	}

	result, err := r.DB.ExecContext(ctx, query, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("could not insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return r.FindByID(ctx, id)
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを検索します。
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	query := r.Dialect.Rebind("SELECT id, username, email, password_hash, created_at FROM users WHERE " + cond)
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}
