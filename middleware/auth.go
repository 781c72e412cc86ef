package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token and puts the
// identity claims on the context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Iniciá sesión para continuar"})
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Sesión expirada, iniciá sesión nuevamente"})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the identity claims when a valid token is present and
// lets the request through either way. Cart endpoints use this: they serve
// both logged-in users and anonymous visitors.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := c.GetHeader("Authorization"); tokenString != "" {
			if claims, err := parseToken(tokenString, secret); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	if v, ok := claims["user_id"].(string); ok {
		c.Set("user_id", v)
	}
	if v, ok := claims["role"].(string); ok {
		c.Set("role", v)
	}
}
