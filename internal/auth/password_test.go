package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatalf("expected password to verify against its own hash")
	}
	if VerifyPassword("wrong password", hash) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestHashPasswordSaltsPerCall(t *testing.T) {
	first, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must verify as false")
	}
	if VerifyPassword("anything", "") {
		t.Fatalf("empty hash must verify as false")
	}
}
