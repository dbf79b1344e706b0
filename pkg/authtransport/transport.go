// Package authtransport decorates an http.RoundTripper with bearer-token
// injection and transparent recovery from access-token expiry: a 401
// response triggers a single-flight refresh, and the failing request is
// replayed exactly once with the refreshed token.
package authtransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// TokenSource supplies the current access token and accepts the outcome of
// a refresh: a replacement token on success, session teardown on failure.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	StoreToken(ctx context.Context, accessToken string) error
	ClearSession(ctx context.Context) error
}

// RefreshFunc performs the renewal call and returns a new access token.
// The renewal credential travels out-of-band (an http-only cookie held by
// the caller's cookie jar) and is opaque to this package.
type RefreshFunc func(ctx context.Context) (string, error)

// EventRecorder counts transport events for diagnostics and tests.
type EventRecorder interface {
	Increment(event string)
}

// Events recorded by the transport.
const (
	EventRefreshSuccess  = "refresh.success"
	EventRefreshFailure  = "refresh.failure"
	EventRequestReplayed = "request.replayed"
)

// Sentinel errors exposed by the transport.
var (
	ErrMissingTokenSource = errors.New("auth_transport.missing_token_source")
	ErrMissingRefreshFunc = errors.New("auth_transport.missing_refresh_func")
	ErrRefreshFailed      = errors.New("auth_transport.refresh_failed")
)

// defaultSkipSuffixes are the endpoints whose 401 responses must never
// trigger a refresh: the login and refresh calls themselves.
var defaultSkipSuffixes = []string{"/auth/login", "/auth/refresh"}

// Config configures the Transport.
type Config struct {
	Base         http.RoundTripper
	Tokens       TokenSource
	Refresh      RefreshFunc
	SkipSuffixes []string
	Logger       *zap.Logger
	Events       EventRecorder
}

type nopRecorder struct{}

func (nopRecorder) Increment(event string) {}

type refreshOutcome struct {
	token string
	err   error
}

// Transport implements http.RoundTripper. Refresh is single-flight: at most
// one renewal call is outstanding, and every request that hits a 401 while
// one is pending waits for it, then replays with the shared result.
type Transport struct {
	base         http.RoundTripper
	tokens       TokenSource
	refresh      RefreshFunc
	skipSuffixes []string
	logger       *zap.Logger
	events       EventRecorder

	mutex      sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome
}

// New constructs a Transport after validating the supplied configuration.
func New(configuration Config) (*Transport, error) {
	if configuration.Tokens == nil {
		return nil, fmt.Errorf("auth_transport.new: %w", ErrMissingTokenSource)
	}
	if configuration.Refresh == nil {
		return nil, fmt.Errorf("auth_transport.new: %w", ErrMissingRefreshFunc)
	}
	base := configuration.Base
	if base == nil {
		base = http.DefaultTransport
	}
	skipSuffixes := configuration.SkipSuffixes
	if len(skipSuffixes) == 0 {
		skipSuffixes = defaultSkipSuffixes
	}
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := configuration.Events
	if events == nil {
		events = nopRecorder{}
	}
	return &Transport{
		base:         base,
		tokens:       configuration.Tokens,
		refresh:      configuration.Refresh,
		skipSuffixes: skipSuffixes,
		logger:       logger,
		events:       events,
	}, nil
}

type replayMarker struct{}

func markReplayed(ctx context.Context) context.Context {
	return context.WithValue(ctx, replayMarker{}, true)
}

func wasReplayed(ctx context.Context) bool {
	replayed, ok := ctx.Value(replayMarker{}).(bool)
	return ok && replayed
}

// RoundTrip sends the request with the current bearer token attached. On a
// 401 from a non-auth endpoint it refreshes once and replays once; any
// other status, and a second 401 on a replayed request, pass through.
func (transport *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	ctx := request.Context()
	token, tokenErr := transport.tokens.Token(ctx)
	if tokenErr != nil {
		return nil, fmt.Errorf("auth_transport.round_trip: %w", tokenErr)
	}
	response, err := transport.base.RoundTrip(withBearer(request, ctx, token))
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusUnauthorized {
		return response, nil
	}
	if transport.isAuthPath(request.URL.Path) || wasReplayed(ctx) {
		return response, nil
	}
	if request.Body != nil && request.GetBody == nil {
		// the body is gone; a replay would send an empty request
		return response, nil
	}

	drainAndClose(response.Body)

	refreshedToken, refreshErr := transport.awaitRefresh(ctx)
	if refreshErr != nil {
		return nil, fmt.Errorf("auth_transport.round_trip: %w", refreshErr)
	}

	transport.events.Increment(EventRequestReplayed)
	replay := withBearer(request, markReplayed(ctx), refreshedToken)
	if request.GetBody != nil {
		replayBody, bodyErr := request.GetBody()
		if bodyErr != nil {
			return nil, fmt.Errorf("auth_transport.replay_body: %w", bodyErr)
		}
		replay.Body = replayBody
	}
	return transport.base.RoundTrip(replay)
}

func (transport *Transport) isAuthPath(path string) bool {
	for _, suffix := range transport.skipSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// awaitRefresh either joins an in-flight refresh as a waiter or runs the
// renewal call itself and settles every waiter with the shared outcome.
func (transport *Transport) awaitRefresh(ctx context.Context) (string, error) {
	transport.mutex.Lock()
	if transport.refreshing {
		waiter := make(chan refreshOutcome, 1)
		transport.waiters = append(transport.waiters, waiter)
		transport.mutex.Unlock()
		select {
		case outcome := <-waiter:
			return outcome.token, outcome.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	transport.refreshing = true
	transport.mutex.Unlock()

	outcome := transport.runRefresh(ctx)

	transport.mutex.Lock()
	transport.refreshing = false
	settled := transport.waiters
	transport.waiters = nil
	transport.mutex.Unlock()

	for _, waiter := range settled {
		waiter <- outcome
	}
	return outcome.token, outcome.err
}

func (transport *Transport) runRefresh(ctx context.Context) refreshOutcome {
	refreshedToken, refreshErr := transport.refresh(ctx)
	if refreshErr != nil {
		transport.events.Increment(EventRefreshFailure)
		transport.logger.Warn("access token refresh failed", zap.Error(refreshErr))
		if clearErr := transport.tokens.ClearSession(ctx); clearErr != nil {
			transport.logger.Error("session teardown after failed refresh", zap.Error(clearErr))
		}
		return refreshOutcome{err: fmt.Errorf("%w: %s", ErrRefreshFailed, refreshErr)}
	}
	if storeErr := transport.tokens.StoreToken(ctx, refreshedToken); storeErr != nil {
		transport.events.Increment(EventRefreshFailure)
		return refreshOutcome{err: fmt.Errorf("auth_transport.store_token: %w", storeErr)}
	}
	transport.events.Increment(EventRefreshSuccess)
	transport.logger.Debug("access token refreshed")
	return refreshOutcome{token: refreshedToken}
}

func withBearer(request *http.Request, ctx context.Context, token string) *http.Request {
	outbound := request.Clone(ctx)
	if token != "" {
		outbound.Header.Set("Authorization", "Bearer "+token)
	}
	return outbound
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
