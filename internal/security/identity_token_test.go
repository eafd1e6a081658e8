package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIdentityTokenRoundTrip(t *testing.T) {
	claims := IdentityClaims{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	claims.Subject = "user-1"

	raw, err := SignIdentityToken(testSecret, claims, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	parsed, err := ParseIdentityToken(testSecret, raw)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if parsed.Subject != "user-1" || parsed.Email != "ada@example.com" || parsed.FirstName != "Ada" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
	if parsed.ID == "" {
		t.Fatal("expected token id to be set")
	}
}

func TestParseIdentityTokenRejectsBadTokens(t *testing.T) {
	claims := IdentityClaims{}
	claims.Subject = "user-1"

	expired, err := SignIdentityToken(testSecret, claims, time.Minute, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	if _, err := ParseIdentityToken(testSecret, expired); !errors.Is(err, ErrInvalidIdentityToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	valid, err := SignIdentityToken(testSecret, claims, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := ParseIdentityToken([]byte("another-secret-another-secret-xx"), valid); !errors.Is(err, ErrInvalidIdentityToken) {
		t.Fatalf("expected wrong secret to be rejected, got %v", err)
	}
	if _, err := ParseIdentityToken(testSecret, "not-a-token"); !errors.Is(err, ErrInvalidIdentityToken) {
		t.Fatalf("expected garbage to be rejected, got %v", err)
	}

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	rawNoExpiry, err := noExpiry.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token without expiry: %v", err)
	}
	if _, err := ParseIdentityToken(testSecret, rawNoExpiry); !errors.Is(err, ErrInvalidIdentityToken) {
		t.Fatalf("expected token without expiry to be rejected, got %v", err)
	}

	if _, err := SignIdentityToken(testSecret, IdentityClaims{}, time.Hour, time.Now()); !errors.Is(err, ErrMissingTokenSubject) {
		t.Fatalf("expected missing subject to fail, got %v", err)
	}
}
