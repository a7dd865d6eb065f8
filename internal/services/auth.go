package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"social-backend/internal/apperrors"
	"social-backend/internal/models"
	"social-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// SignupInput is the request body for POST /api/auth/signup
type SignupInput struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginInput is the request body for POST /api/auth/login
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is an authenticated account together with its session cookie
type Session struct {
	User   *models.User
	Cookie *http.Cookie
}

// AuthService handles signup, login and logout
type AuthService struct {
	store     repository.Store
	hasher    PasswordHasher
	tokens    *TokenService
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(store repository.Store, hasher PasswordHasher, tokens *TokenService) *AuthService {
	// Compared against when the username is unknown, so both login
	// failures cost one hash comparison.
	dummyHash, err := hasher.Hash("not-a-real-password")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prepare dummy password hash")
	}

	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummyHash,
	}
}

// Signup creates an account and starts a session for it
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	if !emailPattern.MatchString(in.Email) {
		return nil, apperrors.Validation("invalid email format")
	}

	users := s.store.Users()

	if _, err := users.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperrors.Conflict("username is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	if _, err := users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.Conflict("email is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.Validation("password is too short")
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, apperrors.Validation("password is too long")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("username or email is already taken")
		}
		return nil, apperrors.Internal(err)
	}

	return s.startSession(user)
}

// Login verifies credentials and starts a session. Unknown usernames and
// wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(in.Password, s.dummyHash)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Internal(err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.startSession(user)
}

// Logout returns the cookie that ends the browser session
func (s *AuthService) Logout() *http.Cookie {
	return s.tokens.Revoke()
}

func (s *AuthService) startSession(user *models.User) (*Session, error) {
	_, cookie, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{User: user.Sanitized(), Cookie: cookie}, nil
}
