package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cartscout/backend/internal/domain"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a backend response body is read.
const maxResponseBytes = 4 << 20 // 4MB

// Client is the multi-backend product retriever. It walks the backend list
// in priority order and returns the first usable product list; when every
// backend is exhausted it falls back to the synthetic catalog. Network and
// data-shape failures never propagate to the caller.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	backends    []Backend
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a retriever over the default backend list.
func NewClient(apiKey string, requestTimeout time.Duration) *Client {
	return NewClientWithBackends(apiKey, requestTimeout, DefaultBackends())
}

// NewClientWithBackends creates a retriever over an explicit backend list.
// Tests use this to point the descriptor table at mock servers.
func NewClientWithBackends(apiKey string, requestTimeout time.Duration, backends []Backend) *Client {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}

	// RapidAPI free tiers are metered per month; 1 req/sec with a small
	// burst keeps a misbehaving caller from burning the quota.
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		apiKey:      apiKey,
		backends:    backends,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose per-backend logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Search produces 1-8 products for a free-text query. The only hard error
// is a missing credential, reported before any HTTP call; everything else
// degrades to the next backend and finally to the synthetic fallback.
func (c *Client) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}
	if c.apiKey == "" {
		return nil, domain.ErrMissingCredential
	}

	for _, backend := range c.backends {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		products, err := c.tryBackend(ctx, backend, query)
		if err != nil {
			log.Printf("[SEARCH] %s failed: %v", backend.Name, err)
			continue
		}
		if len(products) == 0 {
			log.Printf("[SEARCH] %s returned no valid products for %q", backend.Name, query)
			continue
		}

		log.Printf("[SEARCH] %s returned %d products for %q", backend.Name, len(products), query)
		return &domain.SearchResult{
			Products: products,
			Source:   backend.Name,
		}, nil
	}

	log.Printf("[SEARCH] all backends exhausted for %q, using fallback catalog", query)
	return Fallback(query), nil
}

// tryBackend issues one request against a single backend and maps its
// response. Any failure is returned for logging and the caller moves on.
func (c *Client) tryBackend(ctx context.Context, backend Backend, query string) ([]domain.Product, error) {
	reqURL := fmt.Sprintf("%s?%s", backend.URL, backend.Params(query).Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", backend.Host)

	c.debugLog("GET %s", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.debugLog("%s status %d body %s", backend.Name, resp.StatusCode, body)
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
	}

	return backend.Parse(body)
}

// readLimitedBody reads at most limit bytes from the body.
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[SEARCH] "+format, args...)
	}
}
