package adminapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap/zaptest"

	"github.com/amberleaf/teactl/internal/session"
	"github.com/amberleaf/teactl/internal/telemetry"
	"github.com/amberleaf/teactl/pkg/authtransport"
)

const refreshCookieName = "refreshToken"

// fakeBackend is a minimal rendition of the shop's Express API: login hands
// out a bearer token plus an http-only refresh cookie, refresh rotates the
// token, and the admin resources demand a current token.
type fakeBackend struct {
	mutex         sync.Mutex
	signingKey    []byte
	tokenSerial   int
	currentToken  string
	refreshCookie string
	refuseRefresh bool
	refreshCalls  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{signingKey: []byte("backend-signing-key")}
}

// mintToken signs a fresh token. The serial keeps consecutive tokens
// distinct even when they carry the same second-resolution expiry.
func (backend *fakeBackend) mintToken(t *testing.T) string {
	t.Helper()
	backend.tokenSerial++
	claims := jwt.RegisteredClaims{
		ID:        strconv.Itoa(backend.tokenSerial),
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
	}
	signed, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(backend.signingKey)
	if signErr != nil {
		t.Fatalf("failed to sign token: %v", signErr)
	}
	return signed
}

func (backend *fakeBackend) rotateToken(t *testing.T) string {
	t.Helper()
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.currentToken = backend.mintToken(t)
	return backend.currentToken
}

// expireToken makes every outstanding bearer token stale without touching
// the refresh cookie, mimicking access-token expiry.
func (backend *fakeBackend) expireToken(t *testing.T) {
	t.Helper()
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.currentToken = backend.mintToken(t)
}

func (backend *fakeBackend) authorized(ginCtx *gin.Context) bool {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	bearer := strings.TrimPrefix(ginCtx.GetHeader("Authorization"), "Bearer ")
	if bearer == "" || bearer != backend.currentToken {
		ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
		return false
	}
	return true
}

func (backend *fakeBackend) router(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")

	api.POST("/auth/login", func(ginCtx *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if bindErr := ginCtx.ShouldBindJSON(&body); bindErr != nil {
			ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return
		}
		if body.Email == "inactive@example.com" {
			ginCtx.JSON(http.StatusForbidden, gin.H{"error": "Your account is inactive. Contact the administrator."})
			return
		}
		if body.Password != "correct-horse" {
			ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		backend.mutex.Lock()
		backend.currentToken = backend.mintToken(t)
		backend.refreshCookie = "opaque-refresh-credential"
		token := backend.currentToken
		cookie := backend.refreshCookie
		backend.mutex.Unlock()
		ginCtx.SetCookie(refreshCookieName, cookie, 3600, "/", "", false, true)
		ginCtx.JSON(http.StatusOK, gin.H{
			"accessToken": token,
			"user": gin.H{
				"id":          "admin-1",
				"name":        "Root Admin",
				"email":       body.Email,
				"role":        "admin",
				"permissions": []string{},
			},
		})
	})

	api.POST("/auth/refresh", func(ginCtx *gin.Context) {
		backend.mutex.Lock()
		backend.refreshCalls++
		refuse := backend.refuseRefresh
		expected := backend.refreshCookie
		backend.mutex.Unlock()

		cookie, cookieErr := ginCtx.Cookie(refreshCookieName)
		if refuse || cookieErr != nil || cookie != expected {
			ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalid"})
			return
		}
		ginCtx.JSON(http.StatusOK, gin.H{"accessToken": backend.rotateToken(t)})
	})

	api.POST("/auth/logout", func(ginCtx *gin.Context) {
		ginCtx.JSON(http.StatusInternalServerError, gin.H{"error": "revocation store unavailable"})
	})

	api.GET("/auth/me", func(ginCtx *gin.Context) {
		if !backend.authorized(ginCtx) {
			return
		}
		ginCtx.JSON(http.StatusOK, gin.H{"user": gin.H{
			"role":        "manager",
			"permissions": []string{"orders", "customers"},
		}})
	})

	api.GET("/admin/orders", func(ginCtx *gin.Context) {
		if !backend.authorized(ginCtx) {
			return
		}
		ginCtx.JSON(http.StatusOK, gin.H{"success": true, "orders": []gin.H{
			{"order_id": "ORD-1001", "customer_name": "Mira Shah", "total_amount": 42.5, "status": "Pending"},
			{"order_id": "ORD-1002", "customer_name": "Dev Patel", "total_amount": 18.0, "status": "Delivered"},
		}})
	})

	api.POST("/admin/discounts", func(ginCtx *gin.Context) {
		if !backend.authorized(ginCtx) {
			return
		}
		var request CreateDiscountRequest
		if bindErr := ginCtx.ShouldBindJSON(&request); bindErr != nil {
			ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return
		}
		if request.Name == "" {
			ginCtx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"name": "Name is required"}})
			return
		}
		ginCtx.JSON(http.StatusCreated, gin.H{"success": true, "discount": Discount{
			ID:                 7,
			Name:               request.Name,
			Type:               request.Type,
			Code:               request.Code,
			DiscountPercentage: request.DiscountPercentage,
			TeaIDs:             request.TeaIDs,
		}})
	})

	api.POST("/ingredients", func(ginCtx *gin.Context) {
		if !backend.authorized(ginCtx) {
			return
		}
		name := ginCtx.PostForm("name")
		description := ginCtx.PostForm("description")
		file, fileErr := ginCtx.FormFile("image")
		imageURL := ""
		if fileErr == nil {
			imageURL = "/uploads/ingredients/" + file.Filename
		}
		ginCtx.JSON(http.StatusCreated, gin.H{"success": true, "ingredient": Ingredient{
			ID:          3,
			Name:        name,
			Description: description,
			ImageURL:    imageURL,
		}})
	})

	api.POST("/upload/discount", func(ginCtx *gin.Context) {
		if !backend.authorized(ginCtx) {
			return
		}
		file, fileErr := ginCtx.FormFile("file")
		if fileErr != nil {
			ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "file part missing"})
			return
		}
		ginCtx.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "uploaded",
			"relativePath": "/uploads/discounts/" + file.Filename,
		})
	})

	return router
}

func newTestClient(t *testing.T, server *httptest.Server) (*Client, session.CredentialStore, *telemetry.CounterMetrics) {
	t.Helper()
	store := session.NewMemoryCredentialStore()
	events := telemetry.NewCounterMetrics()
	client, newErr := New(Config{
		BaseURL: server.URL + "/api",
		Store:   store,
		Logger:  zaptest.NewLogger(t),
		Events:  events,
	})
	if newErr != nil {
		t.Fatalf("failed to build client: %v", newErr)
	}
	return client, store, events
}

func login(t *testing.T, client *Client) session.Session {
	t.Helper()
	current, loginErr := client.Login(context.Background(), "admin@example.com", "correct-horse")
	if loginErr != nil {
		t.Fatalf("login error: %v", loginErr)
	}
	return current
}

func TestLoginPersistsSessionAndProfile(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, store, _ := newTestClient(t, server)
	current := login(t, client)

	if current.AccessToken == "" {
		t.Fatalf("expected an access token")
	}
	if current.User.Role != "admin" {
		t.Fatalf("expected admin role, got %q", current.User.Role)
	}

	stored, loadErr := store.Load(context.Background())
	if loadErr != nil {
		t.Fatalf("load error: %v", loadErr)
	}
	if stored.AccessToken != current.AccessToken {
		t.Fatalf("stored token does not match login response")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, store, _ := newTestClient(t, server)
	_, loginErr := client.Login(context.Background(), "admin@example.com", "wrong")
	if !IsUnauthorized(loginErr) {
		t.Fatalf("expected unauthorized, got %v", loginErr)
	}
	if _, loadErr := store.Load(context.Background()); !errors.Is(loadErr, session.ErrNoSession) {
		t.Fatalf("failed login must not persist a session, got %v", loadErr)
	}
}

func TestLoginDetectsDeactivatedAccount(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, _, _ := newTestClient(t, server)
	_, loginErr := client.Login(context.Background(), "inactive@example.com", "correct-horse")
	if !errors.Is(loginErr, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", loginErr)
	}
}

func TestExpiredTokenIsRefreshedTransparently(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, store, events := newTestClient(t, server)
	login(t, client)

	backend.expireToken(t)

	orders, listErr := client.ListOrders(context.Background())
	if listErr != nil {
		t.Fatalf("list error: %v", listErr)
	}
	if len(orders) != 2 {
		t.Fatalf("expected two orders, got %d", len(orders))
	}
	if orders[0].OrderID != "ORD-1001" {
		t.Fatalf("unexpected first order %q", orders[0].OrderID)
	}

	if events.Count(authtransport.EventRefreshSuccess) != 1 {
		t.Fatalf("expected one successful refresh, got %d", events.Count(authtransport.EventRefreshSuccess))
	}
	if events.Count(authtransport.EventRequestReplayed) != 1 {
		t.Fatalf("expected one replayed request, got %d", events.Count(authtransport.EventRequestReplayed))
	}

	stored, loadErr := store.Load(context.Background())
	if loadErr != nil {
		t.Fatalf("load error: %v", loadErr)
	}
	backend.mutex.Lock()
	currentToken := backend.currentToken
	backend.mutex.Unlock()
	if stored.AccessToken != currentToken {
		t.Fatalf("expected the rotated token to be stored")
	}
}

func TestRefreshFailureTearsDownSession(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, store, events := newTestClient(t, server)
	login(t, client)

	backend.mutex.Lock()
	backend.currentToken = backend.mintToken(t)
	backend.refuseRefresh = true
	backend.mutex.Unlock()

	_, listErr := client.ListOrders(context.Background())
	if !errors.Is(listErr, authtransport.ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", listErr)
	}
	if _, loadErr := store.Load(context.Background()); !errors.Is(loadErr, session.ErrNoSession) {
		t.Fatalf("expected session teardown, got %v", loadErr)
	}
	if events.Count(authtransport.EventRefreshFailure) != 1 {
		t.Fatalf("expected one refresh failure, got %d", events.Count(authtransport.EventRefreshFailure))
	}
}

func TestLogoutClearsLocalSessionEvenWhenAPIFails(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, store, _ := newTestClient(t, server)
	login(t, client)

	logoutErr := client.Logout(context.Background())
	if logoutErr == nil {
		t.Fatalf("expected the failing logout call to surface")
	}
	if _, loadErr := store.Load(context.Background()); !errors.Is(loadErr, session.ErrNoSession) {
		t.Fatalf("expected the local session to be cleared, got %v", loadErr)
	}
}

func TestMeReturnsRoleAndPermissions(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, _, _ := newTestClient(t, server)
	login(t, client)

	profile, meErr := client.Me(context.Background())
	if meErr != nil {
		t.Fatalf("me error: %v", meErr)
	}
	if profile.Role != "manager" {
		t.Fatalf("expected manager, got %q", profile.Role)
	}
	if len(profile.Permissions) != 2 {
		t.Fatalf("expected two permissions, got %v", profile.Permissions)
	}
}

func TestCreateDiscountRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, _, _ := newTestClient(t, server)
	login(t, client)

	discount, createErr := client.CreateDiscount(context.Background(), CreateDiscountRequest{
		Name:               "Monsoon Sale",
		Type:               DiscountTypeCouponCode,
		Code:               "MONSOON20",
		DiscountPercentage: 20,
		StartDate:          "2026-09-01",
		EndDate:            "2026-09-30",
	})
	if createErr != nil {
		t.Fatalf("create error: %v", createErr)
	}
	if discount.Code != "MONSOON20" {
		t.Fatalf("expected coupon code to round-trip, got %q", discount.Code)
	}
	if !discount.AppliesToAllTeas() {
		t.Fatalf("a campaign without linked teas must cover the whole catalog")
	}
}

func TestCreateDiscountSurfacesFieldErrors(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, _, _ := newTestClient(t, server)
	login(t, client)

	_, createErr := client.CreateDiscount(context.Background(), CreateDiscountRequest{Type: DiscountTypeCouponCode})
	if !IsValidation(createErr) {
		t.Fatalf("expected a validation error, got %v", createErr)
	}
	var apiErr *APIError
	if !errors.As(createErr, &apiErr) {
		t.Fatalf("expected APIError, got %T", createErr)
	}
	if apiErr.FieldErrors["name"] == "" {
		t.Fatalf("expected a field error for name, got %v", apiErr.FieldErrors)
	}
}

func TestCreateIngredientSendsMultipartForm(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, _, _ := newTestClient(t, server)
	login(t, client)

	image := FilePart{Name: "chamomile.png", Reader: strings.NewReader("png-bytes")}
	ingredient, createErr := client.CreateIngredient(context.Background(), "Chamomile", "Calming flower", &image)
	if createErr != nil {
		t.Fatalf("create error: %v", createErr)
	}
	if ingredient.Name != "Chamomile" || ingredient.Description != "Calming flower" {
		t.Fatalf("form fields did not round-trip: %+v", ingredient)
	}
	if ingredient.ImageURL != "/uploads/ingredients/chamomile.png" {
		t.Fatalf("unexpected image URL %q", ingredient.ImageURL)
	}
}

func TestMultipartRequestSurvivesTokenExpiry(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, _, events := newTestClient(t, server)
	login(t, client)

	backend.expireToken(t)

	image := FilePart{Name: "tulsi.png", Reader: strings.NewReader("png-bytes")}
	ingredient, createErr := client.CreateIngredient(context.Background(), "Tulsi", "Holy basil", &image)
	if createErr != nil {
		t.Fatalf("create error: %v", createErr)
	}
	if ingredient.Name != "Tulsi" {
		t.Fatalf("expected the buffered form to replay intact, got %+v", ingredient)
	}
	if events.Count(authtransport.EventRequestReplayed) != 1 {
		t.Fatalf("expected one replayed request, got %d", events.Count(authtransport.EventRequestReplayed))
	}
}

func TestUploadDiscountImageReturnsRelativePath(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router(t))
	defer server.Close()

	client, _, _ := newTestClient(t, server)
	login(t, client)

	relativePath, uploadErr := client.UploadDiscountImage(context.Background(), FilePart{
		Name:   "banner.jpg",
		Reader: io.NopCloser(strings.NewReader("jpg-bytes")),
	})
	if uploadErr != nil {
		t.Fatalf("upload error: %v", uploadErr)
	}
	if relativePath != "/uploads/discounts/banner.jpg" {
		t.Fatalf("unexpected relative path %q", relativePath)
	}
}

func TestNewRequiresCredentialStore(t *testing.T) {
	_, newErr := New(Config{BaseURL: "http://localhost:5000/api"})
	if !errors.Is(newErr, ErrMissingCredentialStore) {
		t.Fatalf("expected ErrMissingCredentialStore, got %v", newErr)
	}
}
