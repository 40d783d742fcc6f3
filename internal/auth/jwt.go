package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Role tags what a signed-in user may do
type Role string

const (
	RoleAdmin Role = "admin"
	RoleDonor Role = "donor"
)

const (
	issuer                = "bloodlink"
	sessionAudience       = "session"
	verificationAudience  = "email-verification"
	verificationTokenLife = 48 * time.Hour
)

// Principal is the signed-in user carried by the session cookie
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// TokenClaims represents the claims in the JWT token
type TokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 tokens
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Expiry is how long session tokens live
func (m *TokenManager) Expiry() time.Duration {
	return m.expiry
}

// GenerateToken creates a session token for p
func (m *TokenManager) GenerateToken(p Principal) (string, error) {
	return m.sign(TokenClaims{
		Email:            p.Email,
		Name:             p.Name,
		Role:             p.Role,
		RegisteredClaims: m.registered(p.ID, sessionAudience, m.expiry),
	})
}

// ValidateToken parses a session token into its principal
func (m *TokenManager) ValidateToken(tokenString string) (*Principal, error) {
	claims, err := m.parse(tokenString, sessionAudience)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin && claims.Role != RoleDonor {
		return nil, ErrInvalidToken
	}
	return &Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name, Role: claims.Role}, nil
}

// GenerateVerificationToken creates a token proving ownership of email
func (m *TokenManager) GenerateVerificationToken(donorID, email string) (string, error) {
	return m.sign(TokenClaims{
		Email:            email,
		RegisteredClaims: m.registered(donorID, verificationAudience, verificationTokenLife),
	})
}

// ValidateVerificationToken returns the donor id and email from a verification token
func (m *TokenManager) ValidateVerificationToken(tokenString string) (string, string, error) {
	claims, err := m.parse(tokenString, verificationAudience)
	if err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Email, nil
}

func (m *TokenManager) registered(subject, audience string, life time.Duration) jwt.RegisteredClaims {
	now := m.now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(life)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
	}
}

func (m *TokenManager) sign(claims TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

func (m *TokenManager) parse(tokenString, audience string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
