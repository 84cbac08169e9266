// Package services содержит логику аутентификации и авторизации пользователей.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dolgodolah/login/internal/lib/jwt"
	"github.com/dolgodolah/login/internal/lib/password"
	"github.com/dolgodolah/login/internal/models"
)

// Ошибки аутентификации. На HTTP-границе ErrInvalidCredentials и
// "пользователь не найден" сводятся к одному сообщению, чтобы по ответу
// нельзя было перебирать зарегистрированные адреса.
var (
	// ErrInvalidCredentials — пароль не подошёл.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified — e-mail учётной записи ещё не подтверждён.
	ErrNotVerified = errors.New("email is not verified")
)

// UserRepository описывает контракт для чтения пользователей из базы данных.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService отвечает за вход пользователя и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет пароль пользователя и выдает JWT.
//
// Порядок проверок: сначала пароль, затем роль — пользователь с ролью guest
// и правильным паролем получает ErrNotVerified, а не ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.Principal, string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if user.Role == models.RoleGuest {
		return nil, "", fmt.Errorf("%s: %w", op, ErrNotVerified)
	}

	token, err := s.jwtMaker.GenerateToken(user.Email, user.Role, user.UID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	principal := &models.Principal{
		UID:   user.UID,
		Email: user.Email,
		Role:  user.Role,
	}
	return principal, token, nil
}

// ValidateToken проверяет JWT и возвращает аутентифицированного пользователя.
func (s *AuthService) ValidateToken(token string) (*models.Principal, error) {
	const op = "auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Principal{
		UID:   claims.UserUID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
