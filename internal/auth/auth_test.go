package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

const testSecret = "test-secret-0123456789"

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	p := Principal{ID: "donor-1", Email: "ana@example.com", Name: "Ana", Role: RoleDonor}

	token, err := m.GenerateToken(p)
	require.NoError(t, err)

	got, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestValidateToken_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateToken(Principal{ID: "x", Role: RoleAdmin})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret, time.Hour).GenerateToken(Principal{ID: "x", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenManager("another-secret-0123456", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationTokenIsNotASession(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	token, err := m.GenerateVerificationToken("donor-1", "ana@example.com")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	id, email, err := m.ValidateVerificationToken(token)
	require.NoError(t, err)
	assert.Equal(t, "donor-1", id)
	assert.Equal(t, "ana@example.com", email)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hashed, "correct horse"))
	assert.False(t, CheckPassword(hashed, "wrong"))
	assert.False(t, CheckPassword("", "anything"))
}

func newGuardedRouter(m *TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := zap.NewNop()
	admin := r.Group("/admin", RequireAuth(m, logger), RequireRole(logger, RoleAdmin))
	admin.GET("", func(c *gin.Context) {
		p, _ := CurrentUser(c)
		c.String(http.StatusOK, p.ID)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	r := newGuardedRouter(m)

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("donor is forbidden", func(t *testing.T) {
		token, _ := m.GenerateToken(Principal{ID: "d1", Role: RoleDonor})
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin via bearer", func(t *testing.T) {
		token, _ := m.GenerateToken(Principal{ID: "a1", Role: RoleAdmin})
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "a1", w.Body.String())
	})
}

func TestVerifyOAuthState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/callback", nil)
	c.Request.AddCookie(&http.Cookie{Name: StateCookieName, Value: "abc"})

	assert.True(t, VerifyOAuthState(c, "abc"))
	assert.False(t, VerifyOAuthState(c, ""))
}

func TestUserInfoFromPayload(t *testing.T) {
	info, err := userInfoFromPayload(&idtoken.Payload{
		Subject: "google-123",
		Claims: map[string]interface{}{
			"email":          "ana@example.com",
			"email_verified": true,
			"name":           "Ana",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "google-123", info.Sub)
	assert.True(t, info.EmailVerified)

	_, err = userInfoFromPayload(&idtoken.Payload{Subject: "x", Claims: map[string]interface{}{}})
	assert.Error(t, err)
}

func TestGoogleProvider_LoginURLSetsState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/login", nil)

	p := NewGoogleProvider("client", "secret", "http://localhost/callback")

	url, err := p.LoginURL(c)
	require.NoError(t, err)
	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, w.Header().Get("Set-Cookie"), StateCookieName)
}
