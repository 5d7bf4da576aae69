package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sia-robotics/sia-server/internal/users"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	users  *users.Service
	config Config
}

func NewService(userService *users.Service, config Config) *Service {
	return &Service{
		users:  userService,
		config: config,
	}
}

type LoginResult struct {
	Token string
	User  *users.User
}

// Login resolves the user by email or registration number and issues an
// access token. Lookup misses and wrong passwords are indistinguishable to
// the caller.
func (s *Service) Login(ctx context.Context, login, password string) (LoginResult, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("resolve user: %w", err)
	}

	if !user.Active {
		return LoginResult{}, ErrInvalidCredentials
	}

	if !users.CheckPassword(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateUserToken(s.config, user.ID, user.Name, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate token: %w", err)
	}

	return LoginResult{Token: token, User: user}, nil
}

// Refresh issues a fresh access token for an already authenticated user,
// re-reading the account so deactivation cuts the session short.
func (s *Service) Refresh(ctx context.Context, userID string) (LoginResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("resolve user: %w", err)
	}

	if !user.Active {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateUserToken(s.config, user.ID, user.Name, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate token: %w", err)
	}

	return LoginResult{Token: token, User: user}, nil
}
