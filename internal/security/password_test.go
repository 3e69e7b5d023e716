package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abc123!@")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(string(hash), "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("Abc123!@", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword mismatch returned error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch to return false")
	}
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"not encoded", "not-an-argon2-hash"},
		{"wrong algorithm", "$argon2i$v=19$t=3,m=65536,p=2$c2FsdA==$aGFzaA=="},
		{"wrong version", "$argon2id$v=18$t=3,m=65536,p=2$c2FsdA==$aGFzaA=="},
		{"missing field", "$argon2id$v=19$t=3,m=65536,p=2$c2FsdA=="},
		{"bad params", "$argon2id$v=19$t=x,m=y,p=z$c2FsdA==$aGFzaA=="},
		{"bad salt encoding", "$argon2id$v=19$t=3,m=65536,p=2$!!$aGFzaA=="},
	}

	for _, tc := range tests {
		if _, err := VerifyPassword("whatever", []byte(tc.hash)); err == nil {
			t.Errorf("%s: expected error for hash %q", tc.name, tc.hash)
		}
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("Abc123!@")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("Abc123!@")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if string(h1) == string(h2) {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
		valid    bool
	}{
		{"Abc123!@", 5, true},
		{"abc", 1, false},
		{"abcdefgh", 2, false},
		{"Abcdefg1", 4, true},
		{"abcdef1!", 4, true},
		{"ABC123!@", 4, true},
		{"", 0, false},
	}

	for _, tc := range tests {
		got := CheckPasswordStrength(tc.password)
		if got.Score != tc.score || got.Valid != tc.valid {
			t.Errorf("CheckPasswordStrength(%q) = score %d valid %v, want score %d valid %v",
				tc.password, got.Score, got.Valid, tc.score, tc.valid)
		}
	}
}

func TestStrengthMessageEnumeratesUnmetCriteria(t *testing.T) {
	s := CheckPasswordStrength("abc")
	msg := StrengthMessage(s)
	for _, want := range []string{"at least 8 characters", "an uppercase letter", "a digit", "a symbol"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing criterion %q", msg, want)
		}
	}
}
