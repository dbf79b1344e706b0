// Package adminapi holds typed clients for the tea-shop admin REST API:
// authentication plus the order, customer, catalog, discount, user, and
// review resources. All requests flow through the refresh transport, so
// access-token expiry is recovered invisibly to callers.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amberleaf/teactl/internal/session"
	"github.com/amberleaf/teactl/internal/telemetry"
	"github.com/amberleaf/teactl/pkg/authtransport"
)

// DefaultBaseURL matches the backend's local development address.
const DefaultBaseURL = "http://localhost:5000/api"

// DefaultTimeout bounds every request; the original client configured no
// timeout at all and could hang forever on a stuck request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrMissingCredentialStore indicates the client was built without a store.
	ErrMissingCredentialStore = errors.New("api_client.missing_credential_store")
)

// Config configures the Client.
type Config struct {
	BaseURL string
	Store   session.CredentialStore
	Logger  *zap.Logger
	Events  telemetry.Recorder
	Timeout time.Duration

	// Base replaces the underlying network transport; tests use it.
	Base http.RoundTripper
}

// Client is the authenticated HTTP client for the admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.CredentialStore
	logger     *zap.Logger
}

// New constructs a Client. The refresh cookie lives in a cookie jar shared
// between regular requests and the renewal call; client code never sees it.
func New(configuration Config) (*Client, error) {
	if configuration.Store == nil {
		return nil, fmt.Errorf("api_client.new: %w", ErrMissingCredentialStore)
	}
	baseURL := strings.TrimRight(configuration.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := configuration.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := configuration.Base
	if base == nil {
		base = http.DefaultTransport
	}

	jar, jarErr := cookiejar.New(nil)
	if jarErr != nil {
		return nil, fmt.Errorf("api_client.cookie_jar: %w", jarErr)
	}

	// The renewal call bypasses the refresh transport: a 401 from
	// /auth/refresh must surface, never recurse into another refresh.
	refreshClient := &http.Client{Transport: base, Jar: jar, Timeout: timeout}
	refreshURL := baseURL + "/auth/refresh"

	transport, transportErr := authtransport.New(authtransport.Config{
		Base:    base,
		Tokens:  session.NewTokenSource(configuration.Store),
		Refresh: refreshAccessToken(refreshClient, refreshURL),
		Logger:  logger,
		Events:  configuration.Events,
	})
	if transportErr != nil {
		return nil, transportErr
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: transport, Jar: jar, Timeout: timeout},
		store:      configuration.Store,
		logger:     logger,
	}, nil
}

func refreshAccessToken(refreshClient *http.Client, refreshURL string) authtransport.RefreshFunc {
	return func(ctx context.Context) (string, error) {
		request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, refreshURL, nil)
		if requestErr != nil {
			return "", fmt.Errorf("api_client.refresh.request: %w", requestErr)
		}
		response, doErr := refreshClient.Do(request)
		if doErr != nil {
			return "", fmt.Errorf("api_client.refresh: %w", doErr)
		}
		defer closeBody(response.Body)
		if response.StatusCode != http.StatusOK {
			return "", decodeAPIError(response)
		}
		var decoded struct {
			AccessToken string `json:"accessToken"`
		}
		if decodeErr := json.NewDecoder(response.Body).Decode(&decoded); decodeErr != nil {
			return "", fmt.Errorf("api_client.refresh.decode: %w", decodeErr)
		}
		if strings.TrimSpace(decoded.AccessToken) == "" {
			return "", fmt.Errorf("api_client.refresh: %w", errEmptyRefreshedToken)
		}
		return decoded.AccessToken, nil
	}
}

var errEmptyRefreshedToken = errors.New("api_client.refresh.empty_token")

func (client *Client) do(ctx context.Context, method string, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, encodeErr := json.Marshal(payload)
		if encodeErr != nil {
			return fmt.Errorf("api_client.encode: %w", encodeErr)
		}
		body = bytes.NewReader(encoded)
	}
	request, requestErr := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if requestErr != nil {
		return fmt.Errorf("api_client.request: %w", requestErr)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	return client.send(request, out)
}

// doMultipart buffers the form so the refresh transport can replay it.
func (client *Client) doMultipart(ctx context.Context, method string, path string, build func(writer *multipart.Writer) error, out any) error {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	if buildErr := build(writer); buildErr != nil {
		return buildErr
	}
	if closeErr := writer.Close(); closeErr != nil {
		return fmt.Errorf("api_client.multipart: %w", closeErr)
	}
	request, requestErr := http.NewRequestWithContext(ctx, method, client.baseURL+path, bytes.NewReader(buffer.Bytes()))
	if requestErr != nil {
		return fmt.Errorf("api_client.request: %w", requestErr)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Accept", "application/json")
	return client.send(request, out)
}

func (client *Client) send(request *http.Request, out any) error {
	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return fmt.Errorf("api_client.%s %s: %w", strings.ToLower(request.Method), request.URL.Path, doErr)
	}
	defer closeBody(response.Body)
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(response)
	}
	if out == nil {
		return nil
	}
	if decodeErr := json.NewDecoder(response.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("api_client.decode %s: %w", request.URL.Path, decodeErr)
	}
	return nil
}

func closeBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
