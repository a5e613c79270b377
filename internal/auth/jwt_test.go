package auth_test

import (
	"testing"
	"time"

	"github.com/Trishit-H/tourhub/internal/auth"
)

func TestSignAndVerify(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.Subject != "user-123" {
		t.Fatalf("got subject %q, want user-123", claims.Subject)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("iat/exp claims missing")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewManager("secret-a", time.Hour).Sign("user-123")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	_, err = auth.NewManager("secret-b", time.Hour).Verify(token)

	if err == nil {
		t.Fatal("expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	_, err = m.Verify(token)

	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	if _, err := m.Verify("not.a.token"); err == nil {
		t.Fatal("expected garbage token to be rejected")
	}
}
