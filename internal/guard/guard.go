// Package guard holds the two composable gates in front of protected
// commands: one verifying a session exists, one verifying a named
// permission. Both are pure decisions; presentation belongs to the caller.
package guard

import (
	"context"
	"errors"

	"github.com/amberleaf/teactl/internal/permissions"
	"github.com/amberleaf/teactl/internal/session"
)

// LoginRoute is the boundary an unauthenticated caller is sent to.
const LoginRoute = "/"

// DefaultFallbackRoute is where a denied caller lands after acknowledging.
const DefaultFallbackRoute = "/dashboard"

// DeniedMessage is the blocking acknowledgment shown before redirecting.
const DeniedMessage = "You don't have permission to access this resource"

// SessionDecision is the outcome of the session gate.
type SessionDecision struct {
	Allowed    bool
	RedirectTo string
}

// CheckSession allows when a token and parseable profile are stored; a
// corrupt profile is treated identically to absence.
func CheckSession(ctx context.Context, store session.CredentialStore) (SessionDecision, error) {
	if _, loadErr := store.Load(ctx); loadErr != nil {
		if errors.Is(loadErr, session.ErrNoSession) {
			return SessionDecision{Allowed: false, RedirectTo: LoginRoute}, nil
		}
		return SessionDecision{}, loadErr
	}
	return SessionDecision{Allowed: true}, nil
}

// GuardState tracks the permission gate's lifecycle.
type GuardState int

// Permission gate states. Loading lasts until the registry is ready;
// denied and allowed are terminal.
const (
	StateLoading GuardState = iota
	StateDenied
	StateAllowed
)

// PermissionDecision is the outcome of the permission gate.
type PermissionDecision struct {
	State      GuardState
	RedirectTo string
	Message    string
}

// PermissionGuard gates on a single permission key.
type PermissionGuard struct {
	registry *permissions.Registry
	required string
	fallback string
}

// NewPermissionGuard builds a gate for the key; an empty fallback route
// selects DefaultFallbackRoute.
func NewPermissionGuard(registry *permissions.Registry, required string, fallback string) *PermissionGuard {
	if fallback == "" {
		fallback = DefaultFallbackRoute
	}
	return &PermissionGuard{registry: registry, required: required, fallback: fallback}
}

// Evaluate drives the registry to ready and then decides. No permission
// check influences the outcome while the registry is still loading, so a
// slow initialization can never masquerade as a denial.
func (gate *PermissionGuard) Evaluate(ctx context.Context) (PermissionDecision, error) {
	if !gate.registry.Ready() {
		if initErr := gate.registry.Initialize(ctx); initErr != nil {
			return PermissionDecision{State: StateLoading}, initErr
		}
	}
	if !gate.registry.HasPermission(gate.required) {
		return PermissionDecision{
			State:      StateDenied,
			RedirectTo: gate.fallback,
			Message:    DeniedMessage,
		}, nil
	}
	return PermissionDecision{State: StateAllowed}, nil
}
