package adminapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/amberleaf/teactl/internal/session"
)

// ErrAccountDeactivated indicates login was rejected because the account
// has been switched inactive by an administrator.
var ErrAccountDeactivated = errors.New("api_client.account_deactivated")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        session.User `json:"user"`
}

// Login exchanges credentials for an access token and user profile and
// persists both; the refresh token arrives as an http-only cookie captured
// by the client's jar.
func (client *Client) Login(ctx context.Context, email string, password string) (session.Session, error) {
	var decoded loginResponse
	err := client.do(ctx, "POST", "/auth/login", loginRequest{Email: email, Password: password}, &decoded)
	if err != nil {
		if IsForbidden(err) && mentionsInactive(err) {
			return session.Session{}, fmt.Errorf("%w: %s", ErrAccountDeactivated, err)
		}
		return session.Session{}, err
	}
	current := session.Session{AccessToken: decoded.AccessToken, User: decoded.User}
	if saveErr := client.store.Save(ctx, current); saveErr != nil {
		return session.Session{}, saveErr
	}
	client.logger.Info("logged in",
		zap.String("user_id", decoded.User.ID),
		zap.String("role", decoded.User.Role),
	)
	return current, nil
}

func mentionsInactive(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "inactive")
}

// Logout revokes the refresh token server-side and clears the local
// session. The local session is cleared even when the API call fails.
func (client *Client) Logout(ctx context.Context) error {
	apiErr := client.do(ctx, "POST", "/auth/logout", nil, nil)
	if apiErr != nil {
		client.logger.Warn("logout API call failed", zap.Error(apiErr))
	}
	if clearErr := client.store.Clear(ctx); clearErr != nil {
		return clearErr
	}
	return apiErr
}

// Profile is the role and permission set attached to the current user.
type Profile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type meResponse struct {
	User Profile `json:"user"`
}

// Me fetches the current user's role and permission set.
func (client *Client) Me(ctx context.Context) (Profile, error) {
	var decoded meResponse
	if err := client.do(ctx, "GET", "/auth/me", nil, &decoded); err != nil {
		return Profile{}, err
	}
	return decoded.User, nil
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword rotates the current user's password.
func (client *Client) ChangePassword(ctx context.Context, oldPassword string, newPassword string) error {
	return client.do(ctx, "POST", "/auth/change-password", changePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}
