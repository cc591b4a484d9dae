package utils

import (
	"testing"
	"time"
)

const testSecret = "unit-test-secret"

func init() {
	SetJWTSecret(testSecret)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", "member", 24)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, expected 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, expected %q", claims.Username, "alice")
	}
	if claims.Role != "member" {
		t.Errorf("Role = %q, expected %q", claims.Role, "member")
	}
}

func TestTokensDifferPerUser(t *testing.T) {
	token1, _ := GenerateToken(1, "alice", "member", 24)
	token2, _ := GenerateToken(2, "bob", "admin", 24)

	if token1 == token2 {
		t.Error("different users should produce different tokens")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	for _, token := range []string{
		"",
		"not-a-jwt",
		"a.b",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.tampered.signature",
	} {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) should fail", token)
		}
	}
}

func TestParseToken_SecretRotation(t *testing.T) {
	SetJWTSecret("before-rotation")
	token, _ := GenerateToken(1, "alice", "member", 24)

	SetJWTSecret("after-rotation")
	_, err := ParseToken(token)

	SetJWTSecret(testSecret)

	if err == nil {
		t.Error("token signed with the old secret must not verify")
	}
}

func TestGenerateToken_Expiry(t *testing.T) {
	token, err := GenerateToken(1, "alice", "member", 2)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	want := time.Now().Add(2 * time.Hour)
	got := claims.ExpiresAt.Time
	if d := got.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("expiry off by %v", d)
	}
}
