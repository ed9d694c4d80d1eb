package auth

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng#Password!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Str0ng#Password!" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "Str0ng#Password!") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Error("wrong password accepted")
	}
}

func TestIssueAndParse(t *testing.T) {
	is := NewIssuer("test-secret", time.Hour)

	token, err := is.Issue("u1", "asha@example.com", "customer")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := is.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "asha@example.com" || claims.Role != "customer" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no jti")
	}

	second, err := is.Issue("u1", "asha@example.com", "customer")
	if err != nil {
		t.Fatalf("Issue second: %v", err)
	}
	if second == token {
		t.Error("two tokens for the same user are identical")
	}
}

func TestParse_Invalid(t *testing.T) {
	is := NewIssuer("test-secret", time.Hour)
	token, err := is.Issue("u1", "asha@example.com", "host")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := is.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}

	other := NewIssuer("different-secret", time.Hour)
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong-secret token error = %v, want ErrInvalidToken", err)
	}

	expired := NewIssuer("test-secret", -time.Minute)
	stale, err := expired.Issue("u1", "asha@example.com", "host")
	if err != nil {
		t.Fatalf("Issue expired: %v", err)
	}
	if _, err := is.Parse(stale); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}
