package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// TokenIssuer is the issuing side of *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	AccessToken string             `json:"access_token"`
	User        models.UserSummary `json:"user"`
}

// AuthService is the user directory: signup, login and identity lookup.
type AuthService struct {
	users  repositories.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, now: time.Now}
}

// Signup registers a user. Email is lower-cased and both identifiers are
// trimmed before the uniqueness checks.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("username, email and password are required")
	}

	if err := s.ensureFree(ctx, s.users.FindByEmail, email, "email already registered"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.users.FindByUsername, username, "username already taken"); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Lost a race against a concurrent signup; the unique index decided.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("email or username already taken")
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *AuthService) ensureFree(
	ctx context.Context,
	find func(context.Context, string) (*models.User, error),
	value, msg string,
) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return apperr.Conflict(msg)
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return apperr.Internal(err)
	}
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("email and password required")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Auth("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !s.hasher.Check(u.PasswordHash, in.Password) {
		return nil, apperr.Auth("invalid credentials")
	}

	token, err := s.tokens.Issue(u.ID.Hex())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResult{AccessToken: token, User: u.Summary()}, nil
}

// Me returns the user behind a token identity.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}
