package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName is the name of the cookie that stores the session JWT
	SessionCookieName = "bloodlink_session"
	// StateCookieName is the name of the cookie that temporarily stores the OAuth state
	StateCookieName = "bloodlink_oauth_state"
	// StateLength is the length of the random state string in bytes
	StateLength = 32
)

// GenerateRandomString creates a cryptographically secure random string
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// SetSessionCookie writes the signed session token as an HttpOnly cookie.
// There is no server-side session store; the token is the session.
func SetSessionCookie(c *gin.Context, token string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(maxAge.Seconds()), "/", "", secureCookies(), true)
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", secureCookies(), true)
}

// SetOAuthState generates and stores a random state for CSRF protection
func SetOAuthState(c *gin.Context) (string, error) {
	state, err := GenerateRandomString(StateLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookieName, state, int((10 * time.Minute).Seconds()), "/", "", secureCookies(), true)
	return state, nil
}

// VerifyOAuthState verifies the state parameter from the OAuth callback
func VerifyOAuthState(c *gin.Context, receivedState string) bool {
	savedState, err := c.Cookie(StateCookieName)
	if err != nil {
		return false
	}

	// Clear the state cookie regardless of outcome
	c.SetCookie(StateCookieName, "", -1, "/", "", secureCookies(), true)

	return receivedState != "" && savedState == receivedState
}

func secureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}
