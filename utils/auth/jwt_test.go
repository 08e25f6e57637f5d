package auth

import (
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "langroom-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(42, "maria@example.com", "student", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if jti == "" {
		t.Error("empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "maria@example.com" || claims.Role != "student" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateRefreshToken(42, "maria@example.com", "student", 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := testManager()
	other := NewJWTManager(JWTConfig{
		Secret: "a-different-secret",
		Expiry: time.Hour,
		Issuer: "langroom-test",
	})

	token, _, err := m.GenerateAccessToken(1, "x@example.com", "teacher", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret validated")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := testManager()
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token validated")
	}
}

func TestRefreshAccessToken(t *testing.T) {
	m := testManager()

	refresh, _, err := m.GenerateRefreshToken(7, "kenji@example.com", "student", 1)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	access, _, err := m.RefreshAccessToken(refresh, 1)
	if err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}

	claims, err := m.ValidateToken(access)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != "access" || claims.UserID != 7 {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRefreshAccessTokenRejectsAccessToken(t *testing.T) {
	m := testManager()

	access, _, err := m.GenerateAccessToken(7, "kenji@example.com", "student", 1)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, _, err := m.RefreshAccessToken(access, 1); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Errorf("VerifyPassword with correct password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); err == nil {
		t.Error("VerifyPassword accepted wrong password")
	}
}
