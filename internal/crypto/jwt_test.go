package crypto

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fixedClock returns a clock pinned to *at so tests can move time forward.
func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestGenerateToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, nil)

	token, err := issuer.Generate("user-42", "neo", "neo@example.com")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty string")
	}
}

func TestValidateTokenValid(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, nil)

	token, err := issuer.Generate("user-42", "neo", "neo@example.com")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Errorf("Validate() UserID = %q, want %q", claims.UserID, "user-42")
	}
	if claims.Username != "neo" {
		t.Errorf("Validate() Username = %q, want %q", claims.Username, "neo")
	}
	if claims.Email != "neo@example.com" {
		t.Errorf("Validate() Email = %q, want %q", claims.Email, "neo@example.com")
	}
	if claims.Subject != "user-42" {
		t.Errorf("Validate() Subject = %q, want %q", claims.Subject, "user-42")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, nil)

	_, err := issuer.Validate("not-a-valid-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("correct-secret", time.Hour, nil).Generate("user-42", "neo", "neo@example.com")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	_, err = NewTokenIssuer("wrong-secret", time.Hour, nil).Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	issuer := NewTokenIssuer("test-secret", time.Hour, fixedClock(&now))

	token, err := issuer.Generate("user-42", "neo", "neo@example.com")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	now = issuedAt.Add(30 * time.Minute)
	if _, err := issuer.Validate(token); err != nil {
		t.Fatalf("Validate() at T+30m unexpected error: %v", err)
	}

	now = issuedAt.Add(61 * time.Minute)
	_, err = issuer.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate() at T+61m error = %v, want ErrTokenExpired", err)
	}
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	secret := "test-secret"

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wrong-issuer",
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: "user-42",
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	_, err = NewTokenIssuer(secret, time.Hour, nil).Validate(tokenString)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenWrongAudience(t *testing.T) {
	secret := "test-secret"

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{"wrong-audience"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: "user-42",
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	_, err = NewTokenIssuer(secret, time.Hour, nil).Validate(tokenString)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenMissingUserID(t *testing.T) {
	secret := "test-secret"

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	_, err = NewTokenIssuer(secret, time.Hour, nil).Validate(tokenString)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "user-42",
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	_, err = NewTokenIssuer("test-secret", time.Hour, nil).Validate(tokenString)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}
