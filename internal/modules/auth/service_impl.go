package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/almadegranja/alma-backend/internal/apperr"
	"github.com/almadegranja/alma-backend/internal/config"
	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgUnauthorized       = "unauthorized"
)

type service struct {
	cfg config.AuthConfig
	log *zap.Logger
	now func() time.Time
}

// NewService creates a new auth service for the configured admin account.
func NewService(cfg config.AuthConfig, log *zap.Logger) Service {
	return &service{cfg: cfg, log: log, now: time.Now}
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if missing := s.cfg.Missing(); len(missing) > 0 {
		s.log.Error("admin login unavailable", zap.Strings("missing_env", missing))
		return "", apperr.Configuration("missing required environment: "+strings.Join(missing, ", "), nil)
	}

	// Both checks always run so a wrong username costs the same as a wrong
	// password.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUser)) == 1
	passOK := s.checkPassword(password)
	if !userOK || !passOK {
		return "", apperr.Auth(msgInvalidCredentials)
	}

	now := s.now()
	claims := &Claims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.cfg.TokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *service) checkPassword(password string) bool {
	if s.cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
}

func (s *service) Verify(tokenString string) (*Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, apperr.Auth(msgUnauthorized)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Auth(msgUnauthorized)
	}
	// StandardClaims treats a missing exp as valid; tokens must expire.
	if claims.ExpiresAt == 0 || claims.Username != s.cfg.AdminUser {
		return nil, apperr.Auth(msgUnauthorized)
	}
	return claims, nil
}
