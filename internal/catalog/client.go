package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/storefront-go/storefront/internal/domain"
	apperrors "github.com/storefront-go/storefront/pkg/errors"
	"github.com/storefront-go/storefront/pkg/httpclient"
)

// FetchErrorMessage is the fixed user-facing message published when the
// catalog cannot be reached or returns an unusable response.
const FetchErrorMessage = "Failed to fetch products"

// Client fetches the product list from the remote catalog API.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    hc,
		logger:  logger,
	}
}

// List fetches the full product list.
// GET <base>/products
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	return c.fetch(ctx, c.baseURL+"/products")
}

// ListLimit fetches at most n products.
// GET <base>/products?limit=N
func (c *Client) ListLimit(ctx context.Context, n int) ([]domain.Product, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/products?limit=%d", c.baseURL, n))
}

// fetch performs the GET and decodes the JSON array body. Every failure mode
// (transport error, non-2xx status, non-array body) surfaces as an
// AppError carrying FetchErrorMessage.
func (c *Client) fetch(ctx context.Context, url string) ([]domain.Product, error) {
	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, apperrors.Unavailable(FetchErrorMessage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.Unavailable(FetchErrorMessage,
			fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Unavailable(FetchErrorMessage, fmt.Errorf("read body: %w", err))
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// A non-array or otherwise malformed body is treated the same as a
		// transport failure.
		return nil, apperrors.Unavailable(FetchErrorMessage, fmt.Errorf("invalid response format: %w", err))
	}

	c.logger.DebugContext(ctx, "catalog fetch complete",
		slog.String("url", url),
		slog.Int("count", len(products)),
	)

	return products, nil
}

// Ping performs a cheap request against the catalog, for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products?limit=1", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
	return nil
}
