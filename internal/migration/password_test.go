package migration

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(password) != 16 {
		t.Fatalf("length = %d, want 16", len(password))
	}
	for _, r := range password {
		if !strings.ContainsRune(passwordCharset, r) {
			t.Fatalf("character %q outside charset", r)
		}
	}

	other, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if password == other {
		t.Fatal("consecutive passwords should differ")
	}
}

func TestGeneratePasswordRejectsNonPositiveLength(t *testing.T) {
	if _, err := GeneratePassword(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestHashPasswordVerifies(t *testing.T) {
	hash, err := HashPassword("changeme-now")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("changeme-now")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}
