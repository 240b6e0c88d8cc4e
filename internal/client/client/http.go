package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/client/tokenstore"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
	"github.com/google/uuid"
)

// refreshSkew is how long before exp an access token is refreshed.
const refreshSkew = 10 * time.Second

// HTTPClient implements API on top of net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  logging.Logger
	now     func() time.Time

	refreshMu sync.Mutex

	handlerMu      sync.RWMutex
	onUnauthorized func(ctx context.Context)

	inFlight atomic.Int64
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (timeouts, transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithClock injects the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) { c.now = now }
}

// NewHTTPClient returns a client for the API rooted at baseURL, e.g.
// "http://127.0.0.1:8000/api".
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		logger:  logging.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetUnauthorizedHandler registers fn to run whenever an authenticated call
// ends in ErrUnauthorized.
func (c *HTTPClient) SetUnauthorizedHandler(fn func(ctx context.Context)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onUnauthorized = fn
}

// InFlight returns the number of requests currently awaiting a response.
func (c *HTTPClient) InFlight() int64 {
	return c.inFlight.Load()
}

// Login exchanges credentials for a token pair. It never triggers the
// unauthorized handler: a 401 here is a wrong password, returned as
// *HTTPError.
func (c *HTTPClient) Login(ctx context.Context, identifier string, secret []byte) (models.TokenPair, error) {
	body := map[string]string{"phone": identifier, "password": string(secret)}

	var pair models.TokenPair
	status, raw, err := c.send(ctx, http.MethodPost, LoginPath, nil, body, "")
	if err != nil {
		return pair, err
	}
	if status < 200 || status > 299 {
		return pair, newHTTPError(http.MethodPost, LoginPath, status, raw)
	}
	if err := json.Unmarshal(raw, &pair); err != nil {
		return pair, fmt.Errorf("decode login response: %w", err)
	}
	if pair.Access == "" {
		return pair, fmt.Errorf("login response without access token")
	}
	return pair, nil
}

// Me fetches the profile of the token owner.
func (c *HTTPClient) Me(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: MePath}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Logout asks the backend to invalidate accessToken. The token is passed
// explicitly because the local store is already cleared by the time the
// request goes out.
func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	status, raw, err := c.send(ctx, http.MethodGet, LogoutPath, nil, nil, accessToken)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return newHTTPError(http.MethodGet, LogoutPath, status, raw)
	}
	return nil
}

// Get performs an authenticated GET and returns the raw 2xx body.
func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Do performs an authenticated request and decodes a 2xx JSON body into out
// (when out is non-nil and the body is not empty).
func (c *HTTPClient) Do(ctx context.Context, req Request, out any) error {
	raw, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, req Request) ([]byte, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if tokenstore.Expired(token, c.now(), refreshSkew) {
		if fresh, err := c.refresh(ctx, token); err == nil {
			token = fresh
		} else {
			c.logger.Warn(ctx, "proactive token refresh failed", "err", err)
		}
	}

	status, raw, err := c.send(ctx, req.Method, req.Path, req.Query, req.Body, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		fresh, rerr := c.refresh(ctx, token)
		if rerr == nil {
			status, raw, err = c.send(ctx, req.Method, req.Path, req.Query, req.Body, fresh)
			if err != nil {
				return nil, err
			}
		}
		if status == http.StatusUnauthorized {
			c.unauthorized(ctx)
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrUnauthorized)
		}
	}

	if status < 200 || status > 299 {
		return nil, newHTTPError(req.Method, req.Path, status, raw)
	}
	return raw, nil
}

// refresh trades the refresh token for a new access token. stale is the
// access token the caller saw; if another goroutine already replaced it the
// stored one is returned without a second round trip.
func (c *HTTPClient) refresh(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if current != "" && current != stale {
		return current, nil
	}

	refreshToken, err := c.tokens.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if refreshToken == "" {
		return "", tokenstore.ErrNoRefreshToken
	}

	status, raw, err := c.send(ctx, http.MethodPost, RefreshPath, nil, map[string]string{"refresh": refreshToken}, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", newHTTPError(http.MethodPost, RefreshPath, status, raw)
	}

	var pair models.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if pair.Access == "" {
		return "", common.ErrInvalidToken
	}

	if pair.Refresh != "" {
		err = c.tokens.SetTokens(ctx, pair.Access, pair.Refresh)
	} else {
		err = c.tokens.SetAccessToken(ctx, pair.Access)
	}
	if err != nil {
		return "", err
	}

	c.logger.Info(ctx, "access token refreshed")
	return pair.Access, nil
}

func (c *HTTPClient) unauthorized(ctx context.Context) {
	c.handlerMu.RLock()
	fn := c.onUnauthorized
	c.handlerMu.RUnlock()

	if fn != nil {
		fn(ctx)
	}
}

// send performs one HTTP exchange. Only transport failures are returned as
// errors (wrapping ErrUnavailable); any HTTP status is returned to the
// caller to interpret.
func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, body any, token string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	requestID := uuid.NewString()
	ctx = logging.ContextWith(ctx, "request_id", requestID)

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "path", path, "err", err)
		if errors.Is(err, context.Canceled) {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: read body: %w: %v", method, path, ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "request finished",
		"method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(started))

	return resp.StatusCode, raw, nil
}
