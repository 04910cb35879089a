package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	maxUsernameLength = 64
	// bcrypt only reads the first 72 bytes of a password and rejects
	// anything longer, so the limit is enforced here as input validation.
	maxPasswordLength = 72
)

// Service combines credential storage, password hashing and token handling
// into the registration/login/authentication flows.
type Service struct {
	users  UserStore
	tokens *Tokens
}

// NewService constructs a Service.
func NewService(users UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

// TokenTTL reports the access token lifetime.
func (s *Service) TokenTTL() time.Duration { return s.tokens.TTL() }

// Register creates a new principal. Returns ErrAlreadyExists when the
// username is taken and ErrInvalidInput for empty or oversized fields.
// Usernames are case-sensitive and stored as given.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if len(username) > maxUsernameLength {
		return nil, ErrInvalidInput
	}
	if len(password) > maxPasswordLength {
		return nil, ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token. Any mismatch —
// unknown username or wrong password — surfaces as ErrInvalidCredentials
// so callers cannot probe which of the two failed.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID)
}

// Authenticate verifies a bearer token and resolves it to a stored principal.
// A token whose subject no longer exists is treated as invalid; token errors
// are deliberately not distinguished further here.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
