package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const (
	RoleAdmin = "admin"

	DefaultAdminEmail    = "admin@tryalma.ai"
	DefaultAdminPassword = "password"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type Config struct {
	AdminEmail   string
	PasswordHash string // bcrypt; DefaultAdminPassword is hashed when empty
	JWTSecret    string
	TokenTTL     time.Duration
}

// Service authenticates the single configured admin account.
type Service struct {
	admin        User
	passwordHash string
	hasher       *Hasher
	tokens       *TokenProvider
}

func NewService(cfg Config) (*Service, error) {
	hasher := NewHasher(0)

	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" {
		email = DefaultAdminEmail
	}

	hash := cfg.PasswordHash
	if hash == "" {
		var err error
		if hash, err = hasher.Hash(DefaultAdminPassword); err != nil {
			return nil, fmt.Errorf("hash default password: %w", err)
		}
	}

	return &Service{
		admin:        User{ID: "admin", Email: email, Name: "Admin", Role: RoleAdmin},
		passwordHash: hash,
		hasher:       hasher,
		tokens:       NewTokenProvider(cfg.JWTSecret, cfg.TokenTTL),
	}, nil
}

func (s *Service) Login(email, password string) (*LoginResult, error) {
	if !strings.EqualFold(strings.TrimSpace(email), s.admin.Email) {
		// Unknown e-mails cost one bcrypt comparison too.
		_ = s.hasher.Compare(s.passwordHash, password)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(s.passwordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(s.admin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: s.admin}, nil
}

// Authenticate validates a bearer token and returns its claims.
func (s *Service) Authenticate(token string) (*Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
