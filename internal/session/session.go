package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles assignable to administrative users.
const (
	RoleAdmin    = "admin"
	RoleSubAdmin = "sub-admin"
	RoleManager  = "manager"
	RoleSupport  = "support"
)

var (
	// ErrNoSession indicates no credentials are stored for the profile.
	ErrNoSession = errors.New("credential_store.no_session")
	// ErrEmptyAccessToken indicates a save was attempted without a token.
	ErrEmptyAccessToken = errors.New("credential_store.empty_access_token")

	errUnparseableToken = errors.New("session.token.unparseable")
)

// User is the profile blob returned by the login endpoint and cached locally.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// IsAdmin reports whether the role grants every permission implicitly.
func (user User) IsAdmin() bool {
	return strings.EqualFold(user.Role, RoleAdmin)
}

// Session pairs the bearer access token with the cached user profile.
type Session struct {
	AccessToken string
	User        User
}

func encodeUser(user User) (string, error) {
	encoded, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("credential_store.encode_user: %w", err)
	}
	return string(encoded), nil
}

// decodeUser treats a corrupt profile blob the same as an absent session:
// the caller re-authenticates instead of operating on half a profile.
func decodeUser(raw string) (User, error) {
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return User{}, ErrNoSession
	}
	return user, nil
}

// TokenDescription carries unverified claims read out of an access token.
// It is display-only; authorization decisions never consult it.
type TokenDescription struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// DescribeToken parses the access token without verifying its signature.
// The signing key belongs to the backend; the client only surfaces expiry.
func DescribeToken(accessToken string) (TokenDescription, error) {
	if strings.TrimSpace(accessToken) == "" {
		return TokenDescription{}, fmt.Errorf("session.describe_token: %w", errUnparseableToken)
	}
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return TokenDescription{}, fmt.Errorf("session.describe_token: %w", errUnparseableToken)
	}
	description := TokenDescription{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		description.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		description.ExpiresAt = claims.ExpiresAt.Time
	}
	return description, nil
}
