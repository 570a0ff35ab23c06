package security

import (
	"strings"
	"testing"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := VerifyPassword("correct horse battery staple", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = VerifyPassword("wrong password", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword("", testPasswordConfig()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestNewTrackingToken(t *testing.T) {
	token, err := NewTrackingToken()
	if err != nil {
		t.Fatalf("NewTrackingToken returned error: %v", err)
	}
	if !IsTrackingToken(token) {
		t.Fatalf("generated token %q does not match expected shape", token)
	}

	other, err := NewTrackingToken()
	if err != nil {
		t.Fatalf("NewTrackingToken returned error: %v", err)
	}
	if token == other {
		t.Fatal("expected tokens to differ")
	}
}

func TestIsTrackingTokenRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "short", strings.Repeat("g", 32), strings.Repeat("a", 33)} {
		if IsTrackingToken(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}
