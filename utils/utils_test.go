package utils

import (
	"strings"
	"testing"
	"time"

	"manualctf/config"
	"manualctf/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	config.SetConfig(cfg)

	token, err := GenerateToken(models.User{ID: 42, Username: "alice", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != 42 || claims.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsOtherSecretAndExpired(t *testing.T) {
	cfg := config.Default()
	cfg.JWT.Secret = "secret-a"
	config.SetConfig(cfg)
	token, err := GenerateToken(models.User{ID: 1})
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	other := config.Default()
	other.JWT.Secret = "secret-b"
	config.SetConfig(other)
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expected signature error")
	}

	expired := config.Default()
	expired.JWT.TTL = -time.Minute
	config.SetConfig(expired)
	token, err = GenerateToken(models.User{ID: 1})
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expected expired token error")
	}
	config.SetConfig(config.Default())
}

func TestGenerateInvitationCode(t *testing.T) {
	code := GenerateInvitationCode(12)
	if len(code) != 12 {
		t.Fatalf("unexpected length: %d", len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(charset, r) {
			t.Fatalf("unexpected rune %q", r)
		}
	}
}

func TestParseTokenRejectsForeignIssuer(t *testing.T) {
	cfg := config.Default()
	cfg.JWT.Secret = "shared"
	config.SetConfig(cfg)
	defer config.SetConfig(config.Default())

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 7,
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("shared"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := ParseToken(signed); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}

	token, err := GenerateToken(models.User{ID: 7, Username: "bob"})
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.Subject != "7" || claims.Issuer != tokenIssuer {
		t.Fatalf("unexpected registered claims: %+v", claims.RegisteredClaims)
	}
}
