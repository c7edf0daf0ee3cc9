package app

import (
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chemsite/internal/pkg/jwtutil"
)

type AdminService struct {
	username      string
	passwordHash  string
	jwtSecret     string
	jwtExpiration time.Duration
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAdminService(username, passwordHash, jwtSecret string, jwtExpiration time.Duration) *AdminService {
	if jwtExpiration <= 0 {
		jwtExpiration = 2 * time.Hour
	}
	return &AdminService{
		username:      username,
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AdminService) Login(input LoginInput) (*AuthResult, error) {
	if s.passwordHash == "" {
		return nil, ErrAdminDisabled
	}

	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, expiresAt, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt}, nil
}

func HashPassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if len(password) < 8 {
		return "", ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
