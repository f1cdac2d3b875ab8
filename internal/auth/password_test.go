package auth

import "testing"

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if h1 == h2 {
		t.Error("hashing the same password twice should produce different hashes")
	}

	if err := CheckPassword(h1, "password123"); err != nil {
		t.Errorf("CheckPassword(h1) error = %v", err)
	}
	if err := CheckPassword(h2, "password123"); err != nil {
		t.Errorf("CheckPassword(h2) error = %v", err)
	}

	if err := CheckPassword(h1, "wrong-password"); err == nil {
		t.Error("CheckPassword() should fail for a wrong password")
	}
	if err := CheckPassword(h2, "wrong-password"); err == nil {
		t.Error("CheckPassword() should fail for a wrong password")
	}
}
