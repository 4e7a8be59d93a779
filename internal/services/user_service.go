package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
)

// ErrInvalidCredentials はメールアドレスかパスワードが一致しない場合のエラーです。
var ErrInvalidCredentials = apperror.Unauthorized("invalid credentials")

// UserStore はユーザーの永続化を抽象化します。
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserService はユーザー関連のビジネスロジックを扱います。
type UserService struct {
	userRepo UserStore
	log      *slog.Logger
}

// NewUserService は新しいUserServiceを作成します。
func NewUserService(userRepo UserStore, log *slog.Logger) *UserService {
	return &UserService{userRepo: userRepo, log: log}
}

// RegisterUser はユーザーを登録します。
func (s *UserService) RegisterUser(ctx context.Context, req models.UserRegisterRequest) (*models.User, error) {
	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	createdUser, err := s.userRepo.Create(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", createdUser.ID)
	createdUser.PasswordHash = "" // レスポンスにパスワードを含めない
	return createdUser, nil
}

// AuthenticateUser はユーザーを認証し、成功したらユーザーを返します。
// ユーザーの有無は応答から区別できないようにします。
func (s *UserService) AuthenticateUser(ctx context.Context, req models.UserLoginRequest) (*models.User, error) {
	foundUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := repositories.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	foundUser.PasswordHash = ""
	return foundUser, nil
}
