package permissions

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/session"
)

type fakeProfileFetcher struct {
	calls   atomic.Int64
	gate    chan struct{}
	profile adminapi.Profile
	err     error
}

func (fetcher *fakeProfileFetcher) Me(ctx context.Context) (adminapi.Profile, error) {
	fetcher.calls.Add(1)
	if fetcher.gate != nil {
		<-fetcher.gate
	}
	return fetcher.profile, fetcher.err
}

func storeWithSession(t *testing.T, user session.User) session.CredentialStore {
	t.Helper()
	store := session.NewMemoryCredentialStore()
	saveErr := store.Save(context.Background(), session.Session{
		AccessToken: "header.payload.signature",
		User:        user,
	})
	if saveErr != nil {
		t.Fatalf("save error: %v", saveErr)
	}
	return store
}

func TestInitializeWithoutSessionSkipsNetwork(t *testing.T) {
	fetcher := &fakeProfileFetcher{}
	registry := NewRegistry(session.NewMemoryCredentialStore(), fetcher, zaptest.NewLogger(t))

	if registry.Ready() {
		t.Fatalf("registry must start unready")
	}
	if initErr := registry.Initialize(context.Background()); initErr != nil {
		t.Fatalf("initialize error: %v", initErr)
	}
	if !registry.Ready() {
		t.Fatalf("registry must be ready after initialize")
	}
	if fetcher.calls.Load() != 0 {
		t.Fatalf("expected no profile fetch without a session, got %d", fetcher.calls.Load())
	}
	if registry.HasPermission("orders") {
		t.Fatalf("expected an empty permission set")
	}
}

func TestInitializeCachesGrantedPermissions(t *testing.T) {
	fetcher := &fakeProfileFetcher{profile: adminapi.Profile{
		Role:        session.RoleManager,
		Permissions: []string{"orders", "customers"},
	}}
	registry := NewRegistry(storeWithSession(t, session.User{Role: session.RoleManager}), fetcher, zaptest.NewLogger(t))

	if initErr := registry.Initialize(context.Background()); initErr != nil {
		t.Fatalf("initialize error: %v", initErr)
	}
	if registry.Role() != session.RoleManager {
		t.Fatalf("expected cached role, got %q", registry.Role())
	}
	if !registry.HasPermission("orders") || !registry.HasPermission("customers") {
		t.Fatalf("expected granted keys to pass")
	}
	if registry.HasPermission("manage-users") {
		t.Fatalf("expected ungranted key to fail")
	}
	if !registry.HasAnyPermission([]string{"manage-users", "customers"}) {
		t.Fatalf("expected any-of check to pass on customers")
	}
	if registry.HasAnyPermission([]string{"manage-users", "settings"}) {
		t.Fatalf("expected any-of check to fail when nothing matches")
	}
}

func TestAdminRoleBypassesTheStoredSet(t *testing.T) {
	fetcher := &fakeProfileFetcher{profile: adminapi.Profile{Role: "Admin"}}
	registry := NewRegistry(storeWithSession(t, session.User{Role: "Admin"}), fetcher, zaptest.NewLogger(t))

	if initErr := registry.Initialize(context.Background()); initErr != nil {
		t.Fatalf("initialize error: %v", initErr)
	}
	if !registry.HasPermission("manage-users") {
		t.Fatalf("expected admin to pass every check")
	}
	if !registry.HasAnyPermission([]string{"anything"}) {
		t.Fatalf("expected admin to pass any-of checks")
	}
}

func TestFetchFailureSettlesOnEmptySet(t *testing.T) {
	fetcher := &fakeProfileFetcher{err: errors.New("backend down")}
	registry := NewRegistry(storeWithSession(t, session.User{Role: session.RoleSupport}), fetcher, zaptest.NewLogger(t))

	if initErr := registry.Initialize(context.Background()); initErr != nil {
		t.Fatalf("initialize error: %v", initErr)
	}
	if !registry.Ready() {
		t.Fatalf("registry must land in ready even when the fetch fails")
	}
	if registry.HasPermission("orders") {
		t.Fatalf("expected empty set after a failed fetch")
	}
}

func TestConcurrentInitializeCollapsesToOneFetch(t *testing.T) {
	fetcher := &fakeProfileFetcher{
		gate:    make(chan struct{}),
		profile: adminapi.Profile{Role: session.RoleManager, Permissions: []string{"orders"}},
	}
	registry := NewRegistry(storeWithSession(t, session.User{Role: session.RoleManager}), fetcher, zaptest.NewLogger(t))

	const concurrent = 6
	var waitGroup sync.WaitGroup
	started := make(chan struct{}, concurrent)
	for index := 0; index < concurrent; index++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			started <- struct{}{}
			if initErr := registry.Initialize(context.Background()); initErr != nil {
				t.Errorf("initialize error: %v", initErr)
			}
		}()
	}
	for index := 0; index < concurrent; index++ {
		<-started
	}
	close(fetcher.gate)
	waitGroup.Wait()

	if fetcher.calls.Load() != 1 {
		t.Fatalf("expected one profile fetch, got %d", fetcher.calls.Load())
	}
	if !registry.HasPermission("orders") {
		t.Fatalf("expected every caller to see the shared result")
	}
}

func TestRefreshRefetchesThePermissionSet(t *testing.T) {
	fetcher := &fakeProfileFetcher{profile: adminapi.Profile{
		Role:        session.RoleManager,
		Permissions: []string{"orders"},
	}}
	registry := NewRegistry(storeWithSession(t, session.User{Role: session.RoleManager}), fetcher, zaptest.NewLogger(t))

	if initErr := registry.Initialize(context.Background()); initErr != nil {
		t.Fatalf("initialize error: %v", initErr)
	}
	if initErr := registry.Initialize(context.Background()); initErr != nil {
		t.Fatalf("repeat initialize error: %v", initErr)
	}
	if fetcher.calls.Load() != 1 {
		t.Fatalf("a ready registry must not refetch, got %d calls", fetcher.calls.Load())
	}

	fetcher.profile.Permissions = []string{"orders", "discount"}
	if refreshErr := registry.Refresh(context.Background()); refreshErr != nil {
		t.Fatalf("refresh error: %v", refreshErr)
	}
	if fetcher.calls.Load() != 2 {
		t.Fatalf("refresh must refetch, got %d calls", fetcher.calls.Load())
	}
	if !registry.HasPermission("discount") {
		t.Fatalf("expected the refreshed set to include discount")
	}
}
