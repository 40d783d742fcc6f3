package services

import (
	"context"
	"testing"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/auth"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type verificationCapture struct {
	recordingEmail
	token string
}

func (v *verificationCapture) SendVerification(ctx context.Context, d *models.Donor, token string) error {
	v.token = token
	return v.recordingEmail.SendVerification(ctx, d, token)
}

type authFixture struct {
	svc    *AuthService
	donors *fakeDonors
	admins *fakeAdmins
	tokens *auth.TokenManager
	email  *verificationCapture
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hashed, err := auth.HashPassword("admin-password")
	require.NoError(t, err)

	admins := &fakeAdmins{byEmail: map[string]*models.Admin{
		"admin@bloodlink.ph": {ID: "a1", Name: "Admin", Email: "admin@bloodlink.ph", HashedPass: hashed},
	}}
	donors := newFakeDonors()
	tokens := auth.NewTokenManager("service-test-secret-0123456789", time.Hour)
	email := &verificationCapture{}
	svc := NewAuthService(admins, donors, tokens, email, zap.NewNop())
	return &authFixture{svc: svc, donors: donors, admins: admins, tokens: tokens, email: email}
}

func registration(email string) models.RegisterDonorRequest {
	return models.RegisterDonorRequest{
		Name:      "Maria Santos",
		Email:     email,
		Password:  "donor-password",
		Phone:     "09171234567",
		BloodType: "o-",
		Barangay:  "Concepcion Pequeña",
	}
}

func TestRegister_CreatesUnverifiedDonor(t *testing.T) {
	f := newAuthFixture(t)

	donor, err := f.svc.Register(context.Background(), registration("  Maria@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", donor.Email)
	assert.Equal(t, rules.ONeg, donor.BloodType)
	assert.False(t, donor.EmailVerified)
	assert.True(t, donor.Active)
	assert.True(t, donor.EmailAlerts)
	assert.NotEqual(t, "donor-password", donor.HashedPass)
	assert.NotEmpty(t, f.email.token)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), registration("maria@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), registration("MARIA@example.com"))
	requireAppError(t, err, apperrors.CodeConflict)

	_, err = f.svc.Register(context.Background(), registration("admin@bloodlink.ph"))
	requireAppError(t, err, apperrors.CodeConflict)
}

func TestLogin_UnverifiedThenVerified(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), registration("maria@example.com"))
	require.NoError(t, err)

	login := models.LoginRequest{Email: "maria@example.com", Password: "donor-password"}
	_, err = f.svc.Login(context.Background(), login)
	appErr := requireAppError(t, err, apperrors.CodeEmailNotVerif)
	assert.Equal(t, 403, appErr.HTTPCode)

	require.NoError(t, f.svc.VerifyEmail(context.Background(), f.email.token))

	result, err := f.svc.Login(context.Background(), login)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleDonor, result.User.Role)

	p, err := f.tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User, *p)
}

func TestLogin_AdminCheckedFirst(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), models.LoginRequest{Email: "ADMIN@bloodlink.ph", Password: "admin-password"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, result.User.Role)
	assert.Equal(t, "a1", result.User.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), registration("maria@example.com"))
	require.NoError(t, err)

	for _, req := range []models.LoginRequest{
		{Email: "admin@bloodlink.ph", Password: "wrong"},
		{Email: "maria@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "whatever"},
	} {
		_, err := f.svc.Login(context.Background(), req)
		requireAppError(t, err, apperrors.CodeUnauthorized)
	}
}

func TestLogin_DeactivatedDonor(t *testing.T) {
	f := newAuthFixture(t)
	donor, err := f.svc.Register(context.Background(), registration("maria@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.donors.UpdateFields(context.Background(), donor.ID, map[string]interface{}{
		"email_verified": true,
		"active":         false,
	}))

	_, err = f.svc.Login(context.Background(), models.LoginRequest{Email: "maria@example.com", Password: "donor-password"})
	requireAppError(t, err, apperrors.CodeForbidden)
}

func TestVerifyEmail_RejectsSessionToken(t *testing.T) {
	f := newAuthFixture(t)
	session, err := f.tokens.GenerateToken(auth.Principal{ID: "a1", Role: auth.RoleAdmin})
	require.NoError(t, err)

	err = f.svc.VerifyEmail(context.Background(), session)
	requireAppError(t, err, apperrors.CodeValidation)
}

func TestResendVerification_DoesNotRevealAccounts(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.ResendVerification(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.email.sent)

	_, err := f.svc.Register(context.Background(), registration("maria@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.svc.ResendVerification(context.Background(), "maria@example.com"))
	assert.Len(t, f.email.sent, 2)
}

func TestGoogleLogin_LinksByVerifiedEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), registration("maria@example.com"))
	require.NoError(t, err)

	info := &auth.UserInfo{Sub: "google-123", Email: "maria@example.com", EmailVerified: true}
	result, err := f.svc.GoogleLogin(context.Background(), info)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleDonor, result.User.Role)

	// second login resolves by google id
	info.Email = "changed@example.com"
	again, err := f.svc.GoogleLogin(context.Background(), info)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, again.User.ID)
}

func TestGoogleLogin_UnknownEmailAsksToRegister(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.GoogleLogin(context.Background(), &auth.UserInfo{Sub: "g-1", Email: "new@example.com", EmailVerified: true})
	appErr := requireAppError(t, err, apperrors.CodeNotFound)
	assert.Equal(t, map[string]bool{"register": true}, appErr.Details)

	_, err = f.svc.GoogleLogin(context.Background(), &auth.UserInfo{Sub: "g-2", Email: "new@example.com"})
	requireAppError(t, err, apperrors.CodeUnauthorized)
}
