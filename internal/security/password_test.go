package security_test

import (
	"testing"

	"cafeblog/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("correct horse battery staple")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := security.CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("check with right password failed: %v", err)
	}

	if err := security.CheckPassword(hash, "wrong password"); err == nil {
		t.Fatal("check with wrong password should fail")
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	// bcrypt salts per call, two hashes of the same input must differ
	h1, err := security.HashPassword("same input")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	h2, err := security.HashPassword("same input")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if h1 == h2 {
		t.Fatal("two hashes of the same password should not match")
	}
}

func TestCheckPasswordBadHash(t *testing.T) {
	if err := security.CheckPassword("not-a-bcrypt-hash", "whatever"); err == nil {
		t.Fatal("malformed hash should fail closed")
	}
}
