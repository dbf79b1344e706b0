package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintAccessToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "amberleaf-backend",
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, signErr := token.SignedString([]byte("test-signing-key"))
	if signErr != nil {
		t.Fatalf("failed to sign token: %v", signErr)
	}
	return signed
}

func TestDescribeTokenReadsClaims(t *testing.T) {
	expiry := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	accessToken := mintAccessToken(t, "user-42", expiry)

	description, describeErr := DescribeToken(accessToken)
	if describeErr != nil {
		t.Fatalf("describe error: %v", describeErr)
	}
	if description.Subject != "user-42" {
		t.Fatalf("expected subject user-42, got %s", description.Subject)
	}
	if description.Issuer != "amberleaf-backend" {
		t.Fatalf("expected issuer amberleaf-backend, got %s", description.Issuer)
	}
	if !description.ExpiresAt.Equal(expiry) {
		t.Fatalf("expected expiry %v, got %v", expiry, description.ExpiresAt)
	}
}

func TestDescribeTokenRejectsGarbage(t *testing.T) {
	for _, accessToken := range []string{"", "   ", "not-a-token"} {
		if _, describeErr := DescribeToken(accessToken); describeErr == nil {
			t.Fatalf("expected error for %q", accessToken)
		}
	}
}

func TestIsAdminIsCaseInsensitive(t *testing.T) {
	for _, role := range []string{"admin", "Admin", "ADMIN"} {
		if !(User{Role: role}).IsAdmin() {
			t.Fatalf("expected role %q to count as admin", role)
		}
	}
	for _, role := range []string{RoleManager, RoleSupport, RoleSubAdmin, ""} {
		if (User{Role: role}).IsAdmin() {
			t.Fatalf("role %q must not count as admin", role)
		}
	}
}

func TestDecodeUserTreatsCorruptBlobAsNoSession(t *testing.T) {
	store := NewMemoryCredentialStore()
	store.accessToken = "header.payload.signature"
	store.userJSON = "{not json"
	store.hasSession = true

	if _, loadErr := store.Load(context.Background()); loadErr == nil {
		t.Fatalf("expected corrupt profile to fail the load")
	}
}
