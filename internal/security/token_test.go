package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
	"github.com/Zadjehi/satisf-exercice/internal/models"
)

const testSecret = "test-secret"

func testUser() models.User {
	return models.User{
		ID:        42,
		Username:  "jdupont",
		LastName:  "Dupont",
		FirstName: "Jeanne",
		Role:      authz.RoleQualityManager,
		Active:    true,
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(testSecret, testUser(), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := VerifyToken(token, testSecret)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("unexpected user id: %d", claims.UserID)
	}
	if claims.Username != "jdupont" {
		t.Errorf("unexpected username: %s", claims.Username)
	}
	if claims.Role != string(authz.RoleQualityManager) {
		t.Errorf("unexpected role: %s", claims.Role)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := IssueToken(testSecret, testUser(), -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := VerifyToken(token, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyTokenJustBeforeExpiry(t *testing.T) {
	token, err := IssueToken(testSecret, testUser(), 2*time.Second)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := VerifyToken(token, testSecret); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, testUser(), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := VerifyToken(token, "another-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyTokenTampered(t *testing.T) {
	token, err := IssueToken(testSecret, testUser(), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	tampered := parts[0] + ".eyJ1aWQiOjF9." + parts[2]
	if _, err := VerifyToken(tampered, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyTokenMalformed(t *testing.T) {
	if _, err := VerifyToken("not-a-jwt", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
