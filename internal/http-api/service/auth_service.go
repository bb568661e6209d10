package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookshelf/internal/http-api/middleware/auth"
	"bookshelf/internal/http-api/models"
	"bookshelf/internal/http-api/repository"
)

// AuthService covers the credential store: signup and login.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (userID, token string, err error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokens     TokenService
	bcryptCost int
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenService, bcryptCost int) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup hashes the password and creates the user. Duplicate emails are
// detected by the store's unique index, not by a prior lookup.
func (s *authService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	hashedPassword, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, auth.MaxPasswordBytes)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

// Login returns the same error for an unknown email and a wrong password.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// keep the timing close to a real comparison
			auth.BurnVerification(password)
			return "", "", ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("find user: %w", err)
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", "", err
	}
	return user.ID, token, nil
}
