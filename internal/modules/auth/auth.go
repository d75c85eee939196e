package auth

import (
	"context"

	"github.com/dgrijalva/jwt-go"
)

// Service issues and verifies the admin bearer credential.
type Service interface {
	// Login checks the admin credentials and returns a signed token.
	Login(ctx context.Context, username, password string) (string, error)

	// Verify parses a token and returns its claims if it is well formed,
	// signed with the server secret and unexpired.
	Verify(token string) (*Claims, error)
}

// Claims carried by an admin token.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}
