package security_test

import (
	"testing"

	"github.com/Trishit-H/tourhub/internal/security"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := security.HashPassword("pass1234")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "pass1234" {
		t.Fatal("plaintext must never come back as the hash")
	}

	if err := security.CheckPassword(hash, "pass1234"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}

	if err := security.CheckPassword(hash, "wrongpass"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestNewResetToken(t *testing.T) {
	raw, digest, err := security.NewResetToken()
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	if len(raw) != 64 {
		t.Fatalf("raw token should be 32 hex-encoded bytes, got len %d", len(raw))
	}
	if digest == raw {
		t.Fatal("digest must differ from the raw value")
	}
	if security.HashResetToken(raw) != digest {
		t.Fatal("re-digesting the raw value must match the stored digest")
	}

	raw2, _, err := security.NewResetToken()
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	if raw == raw2 {
		t.Fatal("two tokens should never collide")
	}
}
