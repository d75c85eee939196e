package storefront

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/almadegranja/alma-backend/internal/modules/catalog"
)

// Client reads the public catalog endpoints of a running server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client for baseURL. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	return c.get(ctx, "/products")
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]catalog.Product, error) {
	return c.get(ctx, "/products/featured")
}

// get decodes through catalog.DecodeProducts so client records are
// normalized exactly like server records.
func (c *Client) get(ctx context.Context, path string) ([]catalog.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", path, res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	products, err := catalog.DecodeProducts(data)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return products, nil
}
