package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/staybook/staybook/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  *TokenIssuer
	refresh *RefreshStore
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, refresh *RefreshStore) *Service {
	return &Service{repo: repo, tokens: tokens, refresh: refresh}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, *User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return TokenPair{}, nil, err
	}
	pair, err := s.issue(ctx, *user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, user, nil
}

// Refresh rotates a refresh token into a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.refresh.Consume(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, ErrInvalidToken
	}
	return s.issue(ctx, *user)
}

// Logout revokes the refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Revoke(ctx, refreshToken)
}

// Me returns the current user.
func (s *Service) Me(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateUser registers an account with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, email, password, role string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.Validationf("email required")
	}
	if len(password) < 8 {
		return nil, shared.Validationf("password must be at least 8 characters")
	}
	if !validRole(role) {
		return nil, shared.Validationf("unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.repo.Create(ctx, User{Email: email, PasswordHash: string(hash), Role: role, IsActive: true})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) issue(ctx context.Context, user User) (TokenPair, error) {
	if s.tokens == nil || s.refresh == nil {
		return TokenPair{}, errors.New("auth: token issuing not configured")
	}
	access, err := s.tokens.Issue(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
	}, nil
}
