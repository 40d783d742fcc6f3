package auth

import (
	"errors"
	"strings"

	"bloodlink/internal/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "principal"

// RequireAuth accepts the session cookie or an Authorization bearer token
// and stores the principal on the context.
func RequireAuth(tokens *TokenManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			apperrors.Respond(c, logger, apperrors.Unauthorized("Authentication required"))
			return
		}

		principal, err := tokens.ValidateToken(raw)
		if err != nil {
			ClearSessionCookie(c)
			msg := "Invalid session, please log in again"
			if errors.Is(err, ErrExpiredToken) {
				msg = "Session expired, please log in again"
			}
			apperrors.Respond(c, logger, apperrors.Unauthorized(msg))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole rejects principals whose role is not one of roles. It must run after RequireAuth.
func RequireRole(logger *zap.Logger, roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentUser(c)
		if !ok {
			apperrors.Respond(c, logger, apperrors.Unauthorized("Authentication required"))
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		apperrors.Respond(c, logger, apperrors.Forbidden("You do not have access to this resource"))
	}
}

// CurrentUser returns the principal set by RequireAuth
func CurrentUser(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
