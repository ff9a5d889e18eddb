package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"voyage-bff/internal/model"
)

// =============================================================================
// UPSTREAM FAILURE HANDLING
// =============================================================================
//
// Every Admin API call goes through three layers:
//
//   1. A per-call deadline (Config.Timeout) so a slow store never pins a
//      request goroutine.
//   2. A circuit breaker. After consecutive failures the breaker opens and
//      calls fail fast with a retryable error until the store recovers.
//      A 404 is an answer, not a failure, and never trips the breaker.
//      A call abandoned by its caller says nothing about the store and is
//      excluded from the breaker counts.
//   3. Error mapping. Transport errors and non-2xx statuses become
//      model.APIError values; raw transport errors never leave this package.
//
// =============================================================================

const (
	serviceName     = "Shopify"
	userAgent       = "voyage-bff/1.0"
	defaultVersion  = "2024-07"
	defaultTimeout  = 15 * time.Second
	defaultLensType = "Lens"
	searchLimit     = 50
	lensLimit       = 250
)

// Config holds Shopify-specific client configuration.
type Config struct {
	StoreDomain     string
	AccessToken     string
	APIVersion      string
	LensProductType string
	Timeout         time.Duration

	// Transport overrides the HTTP round tripper (e.g. transport.NewChromeTransport).
	Transport http.RoundTripper

	// BaseURL overrides https://{StoreDomain}/admin/api/{APIVersion}. Used in tests.
	BaseURL string

	Logger *slog.Logger
}

// Client calls the Shopify Admin REST API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	lensType    string
	timeout     time.Duration
	breaker     *gobreaker.CircuitBreaker[[]byte]
	group       singleflight.Group
	logger      *slog.Logger
}

// statusError carries a non-2xx upstream response through the breaker.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.status)
}

// callerGoneError marks a request that failed because the caller's own
// context ended before the per-call deadline.
type callerGoneError struct {
	err error
}

func (e *callerGoneError) Error() string { return e.err.Error() }
func (e *callerGoneError) Unwrap() error { return e.err }

// New creates a Shopify client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" && cfg.StoreDomain == "" {
		return nil, fmt.Errorf("store domain is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("admin access token is required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = defaultVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	lensType := cfg.LensProductType
	if lensType == "" {
		lensType = defaultLensType
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/admin/api/%s", cfg.StoreDomain, version)
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.Transport != nil {
		httpClient.Transport = cfg.Transport
	}

	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: cfg.AccessToken,
		lensType:    lensType,
		timeout:     timeout,
		logger:      logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.status == http.StatusNotFound
			}
			return err == nil
		},
		IsExcluded: func(err error) bool {
			var gone *callerGoneError
			return errors.As(err, &gone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return c, nil
}

// Products fetches up to limit products.
func (c *Client) Products(ctx context.Context, limit int) ([]Product, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}

	var resp productsResponse
	if err := c.get(ctx, "/products.json", q, "products", &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, model.NewValidationError("id", "is required")
	}

	var resp productResponse
	if err := c.get(ctx, "/products/"+url.PathEscape(id)+".json", nil, "Product", &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

// Collections fetches custom then smart collections and concatenates them.
// Concurrent callers share one in-flight fetch. The fetch is detached from
// the caller that started it, so a caller leaving early does not fail the
// others; each request in it is still bounded by Config.Timeout.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("collections", func() (interface{}, error) {
		var custom customCollectionsResponse
		if err := c.get(loadCtx, "/custom_collections.json", nil, "collections", &custom); err != nil {
			return nil, err
		}

		var smart smartCollectionsResponse
		if err := c.get(loadCtx, "/smart_collections.json", nil, "collections", &smart); err != nil {
			return nil, err
		}

		all := make([]Collection, 0, len(custom.CustomCollections)+len(smart.SmartCollections))
		all = append(all, custom.CustomCollections...)
		all = append(all, smart.SmartCollections...)
		return all, nil
	})

	select {
	case <-ctx.Done():
		return nil, model.NewTimeoutError(serviceName, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Collection), nil
	}
}

// CollectionProducts fetches the products of a collection by id.
func (c *Client) CollectionProducts(ctx context.Context, collectionID string) ([]Product, error) {
	var resp productsResponse
	path := "/collections/" + url.PathEscape(collectionID) + "/products.json"
	if err := c.get(ctx, path, nil, "collection products", &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// SearchProducts fetches products whose title matches query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	q := url.Values{
		"limit": {strconv.Itoa(searchLimit)},
		"title": {query},
	}

	var resp productsResponse
	if err := c.get(ctx, "/products.json", q, "products", &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Lenses fetches products of the configured lens product type.
// Failures are logged and yield an empty list so the lens picker degrades
// to "no options" instead of an error.
func (c *Client) Lenses(ctx context.Context) []Product {
	q := url.Values{
		"product_type": {c.lensType},
		"limit":        {strconv.Itoa(lensLimit)},
	}

	var resp productsResponse
	if err := c.get(ctx, "/products.json", q, "lenses", &resp); err != nil {
		c.logger.Warn("lens fetch failed, returning no lenses",
			slog.String("error", err.Error()),
		)
		return []Product{}
	}
	if resp.Products == nil {
		return []Product{}
	}
	return resp.Products
}

// Shop fetches the shop resource.
func (c *Client) Shop(ctx context.Context) (*Shop, error) {
	var resp shopResponse
	if err := c.get(ctx, "/shop.json", nil, "shop", &resp); err != nil {
		return nil, err
	}
	return &resp.Shop, nil
}

// get performs an authenticated GET under the per-call deadline and breaker,
// then decodes the JSON body into v. resource names the entity in errors.
func (c *Client) get(ctx context.Context, path string, query url.Values, resource string, v interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		body, err := c.do(callCtx, reqURL)
		if err != nil && ctx.Err() != nil {
			return nil, &callerGoneError{err: err}
		}
		return body, err
	})
	if err != nil {
		return c.mapError(callCtx, resource, path, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return model.NewUpstreamError(serviceName, fmt.Errorf("parsing %s response: %w", resource, err))
	}
	return nil
}

// do executes a single request. Non-2xx responses return a *statusError.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &statusError{status: resp.StatusCode, body: body}
	}
	return body, nil
}

// setHeaders sets authentication and content negotiation headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// mapError converts breaker, deadline, and status failures to APIError.
func (c *Client) mapError(ctx context.Context, resource, path string, err error) error {
	var se *statusError
	switch {
	case errors.As(err, &se):
		if se.status != http.StatusNotFound {
			c.logger.Error("shopify request failed",
				slog.String("path", path),
				slog.Int("status", se.status),
				slog.String("body", truncate(string(se.body), 256)),
			)
		}
		return parseErrorResponse(se.status, se.body, resource)

	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return model.NewTimeoutError(serviceName, err)

	case errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		c.logger.Error("shopify request timed out",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return model.NewTimeoutError(serviceName, err)

	default:
		c.logger.Error("shopify request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return model.NewUpstreamError(serviceName, err)
	}
}

// parseErrorResponse converts a Shopify error status to APIError.
func parseErrorResponse(status int, body []byte, resource string) error {
	var shErr errorResponse
	json.Unmarshal(body, &shErr) // Best effort parse

	switch status {
	case http.StatusNotFound:
		return model.NewNotFoundError(resource)
	case http.StatusTooManyRequests:
		apiErr := model.NewUpstreamError(serviceName, fmt.Errorf("status %d: rate limited", status))
		apiErr.Retryable = true
		return apiErr
	default:
		return model.NewUpstreamError(serviceName,
			fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(shErr.Errors))))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
