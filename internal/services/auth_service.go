package services

import (
	"context"
	"strings"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/auth"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"go.uber.org/zap"
)

type adminAccounts interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

type donorAccounts interface {
	Create(ctx context.Context, donor *models.Donor) error
	GetByID(ctx context.Context, id string) (*models.Donor, error)
	GetByEmail(ctx context.Context, email string) (*models.Donor, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.Donor, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

type verificationSender interface {
	SendVerification(ctx context.Context, donor *models.Donor, token string) error
}

// LoginResult is returned to the client and mirrored into the session cookie
type LoginResult struct {
	User  auth.Principal `json:"user"`
	Token string         `json:"-"`
}

type AuthService struct {
	admins adminAccounts
	donors donorAccounts
	tokens *auth.TokenManager
	email  verificationSender
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(admins adminAccounts, donors donorAccounts, tokens *auth.TokenManager, email verificationSender, logger *zap.Logger) *AuthService {
	return &AuthService{
		admins: admins,
		donors: donors,
		tokens: tokens,
		email:  email,
		logger: logger,
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified donor and sends the verification email.
// A failed email send does not undo the registration.
func (s *AuthService) Register(ctx context.Context, req models.RegisterDonorRequest) (*models.Donor, error) {
	bt, err := rules.ParseBloodType(req.BloodType)
	if err != nil {
		return nil, apperrors.Validation("Invalid blood type")
	}

	email := normalizeEmail(req.Email)
	if _, err := s.donors.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("An account with this email already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, apperrors.Internal(err)
	}
	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("An account with this email already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, apperrors.Internal(err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	alerts := true
	if req.EmailAlerts != nil {
		alerts = *req.EmailAlerts
	}

	donor := &models.Donor{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		HashedPass:  hashed,
		Phone:       req.Phone,
		BloodType:   bt,
		Barangay:    req.Barangay,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		EmailAlerts: alerts,
		Active:      true,
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, apperrors.FromDB(err, "Donor")
	}

	token, err := s.tokens.GenerateVerificationToken(donor.ID, donor.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.email.SendVerification(ctx, donor, token); err != nil {
		s.logger.Error("failed to send verification email", zap.String("donor_id", donor.ID), zap.Error(err))
	}

	s.logger.Info("donor registered", zap.String("donor_id", donor.ID), zap.String("blood_type", string(bt)))
	return donor, nil
}

// VerifyEmail marks the donor named by a verification token as verified
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	donorID, email, err := s.tokens.ValidateVerificationToken(token)
	if err != nil {
		return apperrors.Validation("Verification link is invalid or has expired")
	}

	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return apperrors.FromDB(err, "Donor")
	}
	if donor.Email != email {
		return apperrors.Validation("Verification link is invalid or has expired")
	}
	if donor.EmailVerified {
		return nil
	}
	return apperrors.FromDB(s.donors.UpdateFields(ctx, donor.ID, map[string]interface{}{"email_verified": true}), "Donor")
}

// ResendVerification sends a fresh verification email. Unknown or already
// verified addresses succeed silently so the endpoint does not reveal accounts.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	donor, err := s.donors.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return apperrors.Internal(err)
	}
	if donor.EmailVerified {
		return nil
	}
	token, err := s.tokens.GenerateVerificationToken(donor.ID, donor.Email)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.email.SendVerification(ctx, donor, token); err != nil {
		return apperrors.External("email", err)
	}
	return nil
}

// Login checks admins first, then donors
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)
	invalid := apperrors.Unauthorized("Invalid email or password")

	admin, err := s.admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !auth.CheckPassword(admin.HashedPass, req.Password) {
			return nil, invalid
		}
		if err := s.admins.TouchLogin(ctx, admin.ID, s.now()); err != nil {
			s.logger.Warn("failed to record admin login", zap.String("admin_id", admin.ID), zap.Error(err))
		}
		return s.issue(auth.Principal{ID: admin.ID, Email: admin.Email, Name: admin.Name, Role: auth.RoleAdmin})
	case !apperrors.IsNotFound(err):
		return nil, apperrors.Internal(err)
	}

	donor, err := s.donors.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, invalid
		}
		return nil, apperrors.Internal(err)
	}
	if !auth.CheckPassword(donor.HashedPass, req.Password) {
		return nil, invalid
	}
	return s.loginDonor(ctx, donor)
}

// GoogleLogin signs in the donor linked to a Google identity. A donor
// registered with the same verified email is linked on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, info *auth.UserInfo) (*LoginResult, error) {
	donor, err := s.donors.GetByGoogleID(ctx, info.Sub)
	if err == nil {
		return s.loginDonor(ctx, donor)
	}
	if !apperrors.IsNotFound(err) {
		return nil, apperrors.Internal(err)
	}

	if !info.EmailVerified {
		return nil, apperrors.Unauthorized("Your Google email address is not verified")
	}
	donor, err = s.donors.GetByEmail(ctx, normalizeEmail(info.Email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("Donor account for this Google email").
				WithDetails(map[string]bool{"register": true})
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.donors.UpdateFields(ctx, donor.ID, map[string]interface{}{
		"google_id":      info.Sub,
		"email_verified": true,
	}); err != nil {
		return nil, apperrors.FromDB(err, "Donor")
	}
	donor.EmailVerified = true
	s.logger.Info("linked google account", zap.String("donor_id", donor.ID))
	return s.loginDonor(ctx, donor)
}

func (s *AuthService) loginDonor(ctx context.Context, donor *models.Donor) (*LoginResult, error) {
	if !donor.Active {
		return nil, apperrors.Forbidden("This donor account has been deactivated")
	}
	if !donor.EmailVerified {
		return nil, apperrors.EmailNotVerified()
	}
	if err := s.donors.TouchLogin(ctx, donor.ID, s.now()); err != nil {
		s.logger.Warn("failed to record donor login", zap.String("donor_id", donor.ID), zap.Error(err))
	}
	return s.issue(auth.Principal{ID: donor.ID, Email: donor.Email, Name: donor.Name, Role: auth.RoleDonor})
}

func (s *AuthService) issue(p auth.Principal) (*LoginResult, error) {
	token, err := s.tokens.GenerateToken(p)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &LoginResult{User: p, Token: token}, nil
}
