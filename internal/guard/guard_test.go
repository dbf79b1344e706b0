package guard

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/permissions"
	"github.com/amberleaf/teactl/internal/session"
)

type staticProfileFetcher struct {
	profile adminapi.Profile
}

func (fetcher staticProfileFetcher) Me(ctx context.Context) (adminapi.Profile, error) {
	return fetcher.profile, nil
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

func TestCheckSessionRedirectsToLoginWhenAbsent(t *testing.T) {
	decision, checkErr := CheckSession(context.Background(), session.NewMemoryCredentialStore())
	if checkErr != nil {
		t.Fatalf("check error: %v", checkErr)
	}
	if decision.Allowed {
		t.Fatalf("expected denial without a session")
	}
	if decision.RedirectTo != LoginRoute {
		t.Fatalf("expected redirect to %q, got %q", LoginRoute, decision.RedirectTo)
	}
}

func TestCheckSessionAllowsStoredSession(t *testing.T) {
	store := storeWithSession(t, session.User{Role: session.RoleManager})
	decision, checkErr := CheckSession(context.Background(), store)
	if checkErr != nil {
		t.Fatalf("check error: %v", checkErr)
	}
	if !decision.Allowed {
		t.Fatalf("expected stored session to pass")
	}
	if decision.RedirectTo != "" {
		t.Fatalf("expected no redirect, got %q", decision.RedirectTo)
	}
}

func TestEvaluateAllowsGrantedPermission(t *testing.T) {
	store := storeWithSession(t, session.User{Role: session.RoleManager})
	registry := permissions.NewRegistry(store, staticProfileFetcher{profile: adminapi.Profile{
		Role:        session.RoleManager,
		Permissions: []string{"orders"},
	}}, zaptest.NewLogger(t))

	gate := NewPermissionGuard(registry, "orders", "")
	decision, evalErr := gate.Evaluate(context.Background())
	if evalErr != nil {
		t.Fatalf("evaluate error: %v", evalErr)
	}
	if decision.State != StateAllowed {
		t.Fatalf("expected allowed, got %v", decision.State)
	}
}

func TestEvaluateDeniesWithFallbackAndMessage(t *testing.T) {
	store := storeWithSession(t, session.User{Role: session.RoleSupport})
	registry := permissions.NewRegistry(store, staticProfileFetcher{profile: adminapi.Profile{
		Role:        session.RoleSupport,
		Permissions: []string{"orders"},
	}}, zaptest.NewLogger(t))

	gate := NewPermissionGuard(registry, "manage-users", "")
	decision, evalErr := gate.Evaluate(context.Background())
	if evalErr != nil {
		t.Fatalf("evaluate error: %v", evalErr)
	}
	if decision.State != StateDenied {
		t.Fatalf("expected denial, got %v", decision.State)
	}
	if decision.RedirectTo != DefaultFallbackRoute {
		t.Fatalf("expected fallback %q, got %q", DefaultFallbackRoute, decision.RedirectTo)
	}
	if decision.Message != DeniedMessage {
		t.Fatalf("unexpected message %q", decision.Message)
	}
}

func TestEvaluateHonorsCustomFallback(t *testing.T) {
	store := storeWithSession(t, session.User{Role: session.RoleSupport})
	registry := permissions.NewRegistry(store, staticProfileFetcher{profile: adminapi.Profile{
		Role: session.RoleSupport,
	}}, zaptest.NewLogger(t))

	gate := NewPermissionGuard(registry, "discount", "/orders")
	decision, evalErr := gate.Evaluate(context.Background())
	if evalErr != nil {
		t.Fatalf("evaluate error: %v", evalErr)
	}
	if decision.RedirectTo != "/orders" {
		t.Fatalf("expected custom fallback, got %q", decision.RedirectTo)
	}
}

func TestEvaluateNeverDeniesWhileLoading(t *testing.T) {
	store := storeWithSession(t, session.User{Role: session.RoleManager})
	registry := permissions.NewRegistry(store, staticProfileFetcher{profile: adminapi.Profile{
		Role:        session.RoleManager,
		Permissions: []string{"reviews"},
	}}, zaptest.NewLogger(t))

	// A fresh registry is unready; Evaluate must drive initialization to
	// completion rather than reading the empty set as a denial.
	if registry.Ready() {
		t.Fatalf("registry must start unready")
	}
	gate := NewPermissionGuard(registry, "reviews", "")
	decision, evalErr := gate.Evaluate(context.Background())
	if evalErr != nil {
		t.Fatalf("evaluate error: %v", evalErr)
	}
	if decision.State != StateAllowed {
		t.Fatalf("expected allowed after initialization, got %v", decision.State)
	}
}
