// Package auth gates the service behind the fixed safety-user list plus a
// guest mode. The list is a login gate for a factory floor tool, not a
// security boundary; it lives in memory and there is no registration path.
package auth

import (
	"errors"
	"fmt"
	"time"

	"violation-log-service/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleSafety = "safety"
	RoleGuest  = "guest"
)

var (
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session is the authenticated identity carried by a token: who is logged in,
// with which role, under which session ID. The token itself is the durable
// session state; presenting it restores the session.
type Session struct {
	ID   string
	Role string
	Name string
}

// Service owns the credential list and the session tokens.
type Service struct {
	users     map[string][]byte // name -> bcrypt hash
	guestName string
	secret    []byte
	tokenTTL  time.Duration
}

type claims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// NewService hashes the configured credential list and prepares token
// signing. Hashing happens once at startup so plaintext passwords never sit
// in the service state.
func NewService(cfg *config.Config) (*Service, error) {
	users := make(map[string][]byte, len(cfg.SafetyUsers))
	for _, cred := range cfg.SafetyUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(cred.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash credential for %s: %w", cred.Name, err)
		}
		users[cred.Name] = hash
	}
	return &Service{
		users:     users,
		guestName: cfg.GuestName,
		secret:    []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
	}, nil
}

// Login checks a safety-user credential and returns a session token.
func (s *Service) Login(name, password string) (string, *Session, error) {
	hash, ok := s.users[name]
	if !ok {
		return "", nil, ErrUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	return s.issue(RoleSafety, name)
}

// GuestLogin opens a read-and-comment session without credentials.
func (s *Service) GuestLogin() (string, *Session, error) {
	return s.issue(RoleGuest, s.guestName)
}

// ValidateToken parses and verifies a session token, restoring the session
// it carries.
func (s *Service) ValidateToken(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return &Session{ID: c.ID, Role: c.Role, Name: c.Name}, nil
}

func (s *Service) issue(role, name string) (string, *Session, error) {
	now := time.Now()
	session := &Session{ID: uuid.NewString(), Role: role, Name: name}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, session, nil
}
