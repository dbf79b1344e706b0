// Package permissions answers "may the current user do X" without a
// network round trip per check. The permission set is fetched once per
// session from the who-am-I endpoint and cached.
package permissions

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/session"
)

// State is the registry's initialization state. There is a single
// transition point: uninitialized -> in-flight -> ready. The registry
// always lands in ready, even when the fetch fails.
type State int

// Registry states.
const (
	StateUninitialized State = iota
	StateInFlight
	StateReady
)

// ProfileFetcher fetches the current user's role and permission set.
// *adminapi.Client satisfies it.
type ProfileFetcher interface {
	Me(ctx context.Context) (adminapi.Profile, error)
}

// Registry caches the session's role and permission set and exposes
// synchronous checks. Construct one per process (or per test) and inject
// it; there is no package-level instance.
type Registry struct {
	store   session.CredentialStore
	fetch   ProfileFetcher
	logger  *zap.Logger
	mutex   sync.Mutex
	state   State
	role    string
	granted map[string]struct{}
	waiters []chan struct{}
}

// NewRegistry constructs an uninitialized registry.
func NewRegistry(store session.CredentialStore, fetch ProfileFetcher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:   store,
		fetch:   fetch,
		logger:  logger,
		granted: make(map[string]struct{}),
	}
}

// Initialize loads the permission set once. With no stored session it
// settles immediately on an empty set without a network call. Concurrent
// calls collapse onto the in-flight attempt and return together.
func (registry *Registry) Initialize(ctx context.Context) error {
	registry.mutex.Lock()
	switch registry.state {
	case StateReady:
		registry.mutex.Unlock()
		return nil
	case StateInFlight:
		waiter := make(chan struct{})
		registry.waiters = append(registry.waiters, waiter)
		registry.mutex.Unlock()
		select {
		case <-waiter:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	registry.state = StateInFlight
	registry.mutex.Unlock()

	role, granted := registry.resolve(ctx)

	registry.mutex.Lock()
	registry.role = role
	registry.granted = granted
	registry.state = StateReady
	settled := registry.waiters
	registry.waiters = nil
	registry.mutex.Unlock()

	for _, waiter := range settled {
		close(waiter)
	}
	return nil
}

// resolve fetches the profile; every failure path yields an empty set.
// Auth failures are expected after an expired session, so only other
// errors are logged.
func (registry *Registry) resolve(ctx context.Context) (string, map[string]struct{}) {
	if _, loadErr := registry.store.Load(ctx); loadErr != nil {
		if !errors.Is(loadErr, session.ErrNoSession) {
			registry.logger.Error("credential load during permission init", zap.Error(loadErr))
		}
		return "", make(map[string]struct{})
	}
	profile, fetchErr := registry.fetch.Me(ctx)
	if fetchErr != nil {
		if !adminapi.IsUnauthorized(fetchErr) {
			registry.logger.Error("permission fetch failed", zap.Error(fetchErr))
		}
		return "", make(map[string]struct{})
	}
	granted := make(map[string]struct{}, len(profile.Permissions))
	for _, key := range profile.Permissions {
		granted[key] = struct{}{}
	}
	return profile.Role, granted
}

// Ready reports whether initialization has completed. Guards must not
// treat an unready registry's checks as denials.
func (registry *Registry) Ready() bool {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	return registry.state == StateReady
}

// Role returns the cached role, empty until ready.
func (registry *Registry) Role() string {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	return registry.role
}

// HasPermission reports whether the session may use the named feature
// area. The admin role satisfies every check regardless of the stored set.
func (registry *Registry) HasPermission(key string) bool {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if strings.EqualFold(registry.role, session.RoleAdmin) {
		return true
	}
	_, granted := registry.granted[key]
	return granted
}

// HasAnyPermission reports whether any of the keys is granted.
func (registry *Registry) HasAnyPermission(keys []string) bool {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if strings.EqualFold(registry.role, session.RoleAdmin) {
		return true
	}
	for _, key := range keys {
		if _, granted := registry.granted[key]; granted {
			return true
		}
	}
	return false
}

// Refresh re-runs initialization unconditionally; used after a mutation
// that may have changed the current user's own permissions.
func (registry *Registry) Refresh(ctx context.Context) error {
	for {
		registry.mutex.Lock()
		if registry.state == StateInFlight {
			waiter := make(chan struct{})
			registry.waiters = append(registry.waiters, waiter)
			registry.mutex.Unlock()
			select {
			case <-waiter:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		registry.state = StateUninitialized
		registry.mutex.Unlock()
		return registry.Initialize(ctx)
	}
}
