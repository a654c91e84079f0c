package security_test

import (
	"testing"

	"github.com/ogp-platform/proforma-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}
	if hash == "very-secure-password" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !security.VerifyPassword(hash, "very-secure-password") {
		t.Fatal("VerifyPassword failed for the correct password")
	}
	if security.VerifyPassword(hash, "bogus-password") {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordRejectsShortInput(t *testing.T) {
	if _, err := security.HashPassword("short"); err == nil {
		t.Fatal("expected error for password below the minimum length")
	}
	if _, err := security.HashPassword("        "); err == nil {
		t.Fatal("expected error for whitespace-only password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if security.VerifyPassword("not-a-hash", "irrelevant") {
		t.Fatal("malformed hash must not verify")
	}
}
