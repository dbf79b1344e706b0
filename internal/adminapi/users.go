package adminapi

import (
	"context"
	"strconv"
)

// AdminUser is a panel user with role-scoped permissions.
type AdminUser struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
}

// PermissionEntry is one entry of the backend's permission catalog.
type PermissionEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type usersResponse struct {
	Success bool        `json:"success"`
	Users   []AdminUser `json:"users"`
}

type permissionsResponse struct {
	Success     bool              `json:"success"`
	Permissions []PermissionEntry `json:"permissions"`
}

// SaveUserRequest is the create/update payload. The generated password for
// a new user is delivered out-of-band by the backend.
type SaveUserRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	IsActive    bool     `json:"isActive"`
	Permissions []string `json:"permissions"`
}

// ListUsers fetches every panel user.
func (client *Client) ListUsers(ctx context.Context) ([]AdminUser, error) {
	var decoded usersResponse
	if err := client.do(ctx, "GET", "/admin/users", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Users, nil
}

// ListPermissionCatalog fetches the full catalog of permission keys and labels.
func (client *Client) ListPermissionCatalog(ctx context.Context) ([]PermissionEntry, error) {
	var decoded permissionsResponse
	if err := client.do(ctx, "GET", "/admin/users/permissions", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Permissions, nil
}

// CreateUser creates a panel user.
func (client *Client) CreateUser(ctx context.Context, request SaveUserRequest) error {
	return client.do(ctx, "POST", "/admin/users", request, nil)
}

// UpdateUser replaces a panel user's profile and permission set.
func (client *Client) UpdateUser(ctx context.Context, userID int64, request SaveUserRequest) error {
	return client.do(ctx, "PUT", "/admin/users/"+formatID(userID), request, nil)
}

// DeleteUser removes a panel user.
func (client *Client) DeleteUser(ctx context.Context, userID int64) error {
	return client.do(ctx, "DELETE", "/admin/users/"+formatID(userID), nil, nil)
}

// ToggleUserActive flips a user's active flag. Like the tea toggle, the
// caller patches optimistically and re-lists.
func (client *Client) ToggleUserActive(ctx context.Context, userID int64) (bool, error) {
	var decoded struct {
		Success  bool `json:"success"`
		IsActive bool `json:"is_active"`
	}
	if err := client.do(ctx, "PATCH", "/admin/users/"+formatID(userID)+"/toggle-active", nil, &decoded); err != nil {
		return false, err
	}
	return decoded.IsActive, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
