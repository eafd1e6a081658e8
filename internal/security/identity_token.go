package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultIdentityTokenTTL = 24 * time.Hour

var (
	ErrInvalidIdentityToken = errors.New("invalid identity token")
	ErrMissingTokenSubject  = errors.New("identity token has no subject")
)

// IdentityClaims is the profile the identity provider asserts about the signed-in user.
// The user id travels in the registered "sub" claim.
type IdentityClaims struct {
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	jwt.RegisteredClaims
}

// SignIdentityToken issues an HS256 token for claims valid for ttl from now.
func SignIdentityToken(secret []byte, claims IdentityClaims, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrMissingTokenSubject
	}
	if ttl <= 0 {
		ttl = DefaultIdentityTokenTTL
	}

	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseIdentityToken verifies the signature and expiry of raw and returns its claims.
func ParseIdentityToken(secret []byte, raw string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidIdentityToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingTokenSubject
	}
	return claims, nil
}
