package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "test-jwt-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func TestTokenDecoderDecode(t *testing.T) {
	decoder, err := NewTokenDecoder(testJWTSecret)
	if err != nil {
		t.Fatalf("NewTokenDecoder() error = %v", err)
	}

	token := signToken(t, testJWTSecret, jwt.MapClaims{
		"id":       42,
		"username": "alice",
		"email":    "alice@example.com",
		"credits":  10,
		"jti":      "4b0c4f3e",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	claims, err := decoder.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.SubjectID != "42" || claims.Username != "alice" || claims.CreditBalance != 10 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenDecoderRejects(t *testing.T) {
	decoder, _ := NewTokenDecoder(testJWTSecret)
	valid := jwt.MapClaims{"id": 1, "username": "bob", "credits": 3}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, valid).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString(none) error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong-secret", token: signToken(t, "other-secret", valid)},
		{name: "alg-none", token: noneToken},
		{name: "expired", token: signToken(t, testJWTSecret, jwt.MapClaims{
			"id": 1, "username": "bob", "exp": time.Now().Add(-time.Minute).Unix(),
		})},
		{name: "missing-id", token: signToken(t, testJWTSecret, jwt.MapClaims{"username": "bob"})},
		{name: "missing-username", token: signToken(t, testJWTSecret, jwt.MapClaims{"id": 1})},
		{name: "empty-username", token: signToken(t, testJWTSecret, jwt.MapClaims{"id": 1, "username": ""})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := decoder.Decode(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Decode() error = %v, want ErrInvalidToken", err)
			}
			if claims != nil {
				t.Fatalf("Decode() claims = %+v, want nil", claims)
			}
		})
	}
}

func TestTokenDecoderCreditsOptional(t *testing.T) {
	decoder, _ := NewTokenDecoder(testJWTSecret)
	claims, err := decoder.Decode(signToken(t, testJWTSecret, jwt.MapClaims{"id": "u-1", "username": "carol"}))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.SubjectID != "u-1" || claims.CreditBalance != 0 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestNewTokenDecoderRequiresSecret(t *testing.T) {
	if _, err := NewTokenDecoder(""); !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("NewTokenDecoder(\"\") error = %v, want ErrMisconfigured", err)
	}
}
