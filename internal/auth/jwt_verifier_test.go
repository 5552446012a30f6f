package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vantage/internal/domain"
	"vantage/internal/domain/models"
)

const testIssuer = "https://example.supabase.co/auth/v1"

func testVerifier(t *testing.T) (*SupabaseJWTVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newVerifier(kf, testIssuer, logger), key
}

func validClaims() *models.SupabaseClaims {
	return &models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "4d7f1f0e-8a43-4c6e-9b3f-2a1d5e6f7a8b",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "authenticated",
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims *models.SupabaseClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestVerifyToken(t *testing.T) {
	v, key := testVerifier(t)

	claims, err := v.VerifyToken(sign(t, jwt.SigningMethodES256, key, validClaims()))
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.GetUserID() != "4d7f1f0e-8a43-4c6e-9b3f-2a1d5e6f7a8b" {
		t.Errorf("GetUserID() = %q", claims.GetUserID())
	}
}

func TestVerifyToken_Rejections(t *testing.T) {
	v, key := testVerifier(t)

	tests := []struct {
		name  string
		token func() string
	}{
		{"garbage", func() string { return "not-a-jwt" }},
		{"expired", func() string {
			c := validClaims()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return sign(t, jwt.SigningMethodES256, key, c)
		}},
		{"no expiry", func() string {
			c := validClaims()
			c.ExpiresAt = nil
			return sign(t, jwt.SigningMethodES256, key, c)
		}},
		{"wrong issuer", func() string {
			c := validClaims()
			c.Issuer = "https://evil.example.com"
			return sign(t, jwt.SigningMethodES256, key, c)
		}},
		{"anon role", func() string {
			c := validClaims()
			c.Role = "anon"
			return sign(t, jwt.SigningMethodES256, key, c)
		}},
		{"missing subject", func() string {
			c := validClaims()
			c.Subject = ""
			return sign(t, jwt.SigningMethodES256, key, c)
		}},
		{"hmac algorithm", func() string {
			return sign(t, jwt.SigningMethodHS256, []byte("shared-secret"), validClaims())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token())
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("VerifyToken() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}
