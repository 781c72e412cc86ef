package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName carries the anonymous cart token. The token is the only
// key to a visitor's cart, so the cookie is HttpOnly and never exposed to
// scripts.
const SessionCookieName = "cart_session_id"

const sessionCookieMaxAge = 30 * 24 * 60 * 60 // 30 days

// MintSessionToken returns a fresh 256-bit token as 64 hex characters.
func MintSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func ReadSessionCookie(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

func SetSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, sessionCookieMaxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
