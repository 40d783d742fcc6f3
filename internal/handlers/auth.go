package handlers

import (
	"net/http"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/auth"
	"bloodlink/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Register handles donor self-registration
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterDonorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	donor, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusCreated, gin.H{
		"donor":   donor,
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

// VerifyEmail consumes the token from the verification link
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.fail(c, apperrors.Validation("token parameter is required"))
		return
	}
	if err := h.Auth.VerifyEmail(c.Request.Context(), token); err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, gin.H{"message": "Email verified. You can now log in."})
}

// ResendVerification always answers 200 for well-formed input
func (h *Handler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.Auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, gin.H{"message": "If the account exists and is unverified, a new link has been sent."})
}

// Login handles user authentication and issues a JWT token
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	auth.SetSessionCookie(c, result.Token, h.Tokens.Expiry())
	h.log(c).Info("login successful", zap.String("user_id", result.User.ID), zap.String("role", string(result.User.Role)))
	apperrors.OK(c, http.StatusOK, gin.H{"user": result.User, "token": result.Token})
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	apperrors.OK(c, http.StatusOK, gin.H{"message": "logout successful"})
}

// Me returns the currently authenticated user
func (h *Handler) Me(c *gin.Context) {
	p := principal(c)
	if p.Role == auth.RoleAdmin {
		apperrors.OK(c, http.StatusOK, gin.H{"user": p})
		return
	}

	donor, err := h.Donors.Get(c.Request.Context(), p.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, gin.H{"user": p, "donor": donor})
}

// GoogleLogin redirects to Google OAuth login
func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		h.fail(c, apperrors.New(apperrors.CodeExternal, "Google sign-in is not configured", http.StatusServiceUnavailable))
		return
	}
	url, err := h.Google.LoginURL(c)
	if err != nil {
		h.fail(c, apperrors.Internal(err))
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback processes the OAuth callback from Google
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		h.fail(c, apperrors.New(apperrors.CodeExternal, "Google sign-in is not configured", http.StatusServiceUnavailable))
		return
	}
	if !auth.VerifyOAuthState(c, c.Query("state")) {
		h.fail(c, apperrors.Unauthorized("Invalid OAuth state"))
		return
	}
	code := c.Query("code")
	if code == "" {
		h.fail(c, apperrors.Validation("Missing authorization code"))
		return
	}

	info, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.fail(c, apperrors.External("google", err))
		return
	}
	result, err := h.Auth.GoogleLogin(c.Request.Context(), info)
	if err != nil {
		h.fail(c, err)
		return
	}

	auth.SetSessionCookie(c, result.Token, h.Tokens.Expiry())
	c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/dashboard")
}
