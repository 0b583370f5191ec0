package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"livechess/internal/storage"
)

var (
	// ErrUnauthorized is returned for a missing, forged, expired or revoked token,
	// and for a bad username/password pair.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest is returned when a required field is missing.
	ErrBadRequest = errors.New("bad request")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = storage.ErrUsernameTaken
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash, email string) error
	GetUser(ctx context.Context, username string) (storage.User, error)
}

// Service registers users and issues, checks and revokes session tokens.
// Tokens are HS256 JWTs whose jti names a live entry in the session store,
// so logging out revokes a token before it expires.
type Service struct {
	users    UserStore
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
}

// NewService creates an auth service signing tokens with secret.
func NewService(users UserStore, sessions SessionStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, sessions: sessions, secret: []byte(secret), ttl: ttl}
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, username, password, email string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.users.CreateUser(ctx, username, string(hash), email); err != nil {
		return "", err
	}
	return s.issue(ctx, username)
}

// Login checks the password and returns a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrBadRequest)
	}
	user, err := s.users.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthorized
	}
	return s.issue(ctx, username)
}

// Logout revokes token.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if _, err := s.lookup(ctx, claims); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, claims.jti)
}

// Authenticate resolves token to the username it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return s.lookup(ctx, claims)
}

// Clear revokes every session.
func (s *Service) Clear(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

func (s *Service) issue(ctx context.Context, username string) (string, error) {
	id := uuid.NewString()
	claims := jwt.MapClaims{
		"sub": username,
		"jti": id,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Put(ctx, id, username, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

type tokenClaims struct {
	sub string
	jti string
}

func (s *Service) parse(token string) (tokenClaims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return tokenClaims{}, ErrUnauthorized
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return tokenClaims{}, ErrUnauthorized
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return tokenClaims{}, ErrUnauthorized
	}
	sub, _ := mc["sub"].(string)
	jti, _ := mc["jti"].(string)
	if sub == "" || jti == "" {
		return tokenClaims{}, ErrUnauthorized
	}
	return tokenClaims{sub: sub, jti: jti}, nil
}

func (s *Service) lookup(ctx context.Context, c tokenClaims) (string, error) {
	username, err := s.sessions.Get(ctx, c.jti)
	if errors.Is(err, ErrNoSession) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if username != c.sub {
		return "", ErrUnauthorized
	}
	return username, nil
}
