package crypto

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("HashPassword() expected 6 parts, got %d: %q", len(parts), hash)
	}
	if parts[1] != "argon2id" {
		t.Errorf("HashPassword() algorithm = %q, want %q", parts[1], "argon2id")
	}
	if parts[2] != "v=19" {
		t.Errorf("HashPassword() version = %q, want %q", parts[2], "v=19")
	}
	if parts[3] != "m=65536,t=3,p=2" {
		t.Errorf("HashPassword() params = %q, want %q", parts[3], "m=65536,t=3,p=2")
	}
}

func TestVerifyPasswordCorrect(t *testing.T) {
	password := "my-secure-password"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	match, err := VerifyPassword(password, hash)
	if err != nil {
		t.Fatalf("VerifyPassword() unexpected error: %v", err)
	}
	if !match {
		t.Error("VerifyPassword() returned false for correct password")
	}
	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() returned false for correct password")
	}
}

func TestVerifyPasswordWrong(t *testing.T) {
	hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	match, err := VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() unexpected error: %v", err)
	}
	if match {
		t.Error("VerifyPassword() returned true for wrong password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() returned true for wrong password")
	}
}

func TestHashPasswordProducesDifferentHashes(t *testing.T) {
	hash1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	hash2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("HashPassword() produced identical hashes for same password (salt should differ)")
	}
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("legacy-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() unexpected error: %v", err)
	}

	if !CheckPassword("legacy-password", string(raw)) {
		t.Error("CheckPassword() returned false for correct bcrypt password")
	}
	if CheckPassword("other-password", string(raw)) {
		t.Error("CheckPassword() returned true for wrong bcrypt password")
	}
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	malformed := []string{
		"invalid-hash-format",
		"",
		"$argon2id$v=19$m=65536,t=0,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
		"$2a$10$short",
	}
	for _, h := range malformed {
		if _, err := VerifyPassword("password", h); err == nil {
			t.Errorf("VerifyPassword() expected error for %q", h)
		}
		if CheckPassword("password", h) {
			t.Errorf("CheckPassword() returned true for malformed hash %q", h)
		}
	}
}

func TestVerifyPasswordRejectsExcessiveCost(t *testing.T) {
	for _, h := range []string{
		"$argon2id$v=19$m=4294967295,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1048577,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=4294967295,p=2$c2FsdA$aGFzaA",
	} {
		if _, err := VerifyPassword("password", h); !errors.Is(err, ErrInvalidHashFormat) {
			t.Errorf("VerifyPassword(%q) expected ErrInvalidHashFormat, got %v", h, err)
		}
	}
}
