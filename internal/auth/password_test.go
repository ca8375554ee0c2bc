package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("  editor-secret  ")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if !VerifyPassword("editor-secret", hash) {
		t.Fatalf("expected trimmed password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("did not expect wrong password to verify")
	}
}

func TestVerifyPassword_EmptyInputs(t *testing.T) {
	t.Parallel()

	if VerifyPassword("", "some-hash") {
		t.Fatalf("empty password must not verify")
	}
	if VerifyPassword("password", "") {
		t.Fatalf("empty hash must not verify")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("   "); err == nil {
		t.Fatalf("expected error for blank password")
	}
}
