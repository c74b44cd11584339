// Package storefront is the REST client for the storefront backend: list
// endpoints consumed by listquery executors, product mutations and the
// customer auth boundary.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"storefront/config"
	"storefront/internal/pkg/common/apperr"
)

// Package-level default Client for convenience wiring.
var defaultClient *Client

// SetDefault sets the package-level default Client.
func SetDefault(c *Client) { defaultClient = c }

// Default returns the package-level default Client.
func Default() *Client { return defaultClient }

const requestIDHeader = "X-Request-ID"

// Client talks JSON to the storefront API. The resource groups share the
// transport and the bearer token.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.RWMutex
	token     string
	onMutates []func(resource string)

	Orders    *OrdersAPI
	Products  *ProductsAPI
	Inventory *InventoryAPI
	Auth      *AuthAPI
}

type Option func(*Client)

// WithHTTPClient replaces the transport, e.g. httptest.Server.Client().
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client configured from config.API.
func New(cfg config.API, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.Orders = &OrdersAPI{c: c}
	c.Products = &ProductsAPI{c: c}
	c.Inventory = &InventoryAPI{c: c}
	c.Auth = &AuthAPI{c: c}
	return c, nil
}

// Token returns the bearer token currently sent with requests.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token. An empty token disables the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// OnMutation registers fn to be called with the resource name after every
// successful create, update or delete. Executors register Invalidate here so
// cached pages of the changed resource are not served again.
func (c *Client) OnMutation(fn func(resource string)) {
	c.mu.Lock()
	c.onMutates = append(c.onMutates, fn)
	c.mu.Unlock()
}

func (c *Client) mutated(resource string) {
	c.mu.RLock()
	fns := append([]func(string){}, c.onMutates...)
	c.mu.RUnlock()
	for _, fn := range fns {
		fn(resource)
	}
}

// errorBody is the error envelope returned by the API. Older endpoints use
// "message", newer ones "error".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON
// response into result. If result is nil the response body is discarded.
// Errors are always *apperr.Error: transport failures are Network, non-2xx
// responses are mapped by status code.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperr.NewUnknown(op, fmt.Errorf("marshaling request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return apperr.NewUnknown(op, fmt.Errorf("creating request: %w", err))
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if !isCanceled(err) {
			c.logger.Debug("request failed", "op", op, "method", method, "path", path, "request_id", reqID, "err", err)
		}
		return apperr.NewNetwork(op, err)
	}
	defer resp.Body.Close()

	// 204 No Content, success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.NewNetwork(op, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(respBody))
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			switch {
			case eb.Error != "":
				msg = eb.Error
			case eb.Message != "":
				msg = eb.Message
			}
		}
		c.logger.Debug("api error", "op", op, "method", method, "path", path, "status", resp.StatusCode, "request_id", reqID, "message", msg)
		return apperr.FromStatus(op, resp.StatusCode, msg)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return apperr.NewUnknown(op, fmt.Errorf("decoding response: %w", err))
		}
	}
	return nil
}

// isCanceled reports whether err came from the caller giving up rather than
// the server or the network.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
