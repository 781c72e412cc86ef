package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IssueJWT signs a 24h HS256 token carrying the identity claims the
// middleware reads back out.
func IssueJWT(secret, userID, email, role, name string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"name":    name,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
