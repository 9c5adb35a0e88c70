// Package catalog предоставляет клиент для внешнего каталога товаров.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// ErrRateLimited возвращается, если каталог ответил 429.
var ErrRateLimited = errors.New("catalog rate limit exceeded")

// RateLimitError содержит рекомендованную каталогом паузу перед повтором.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v, retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// Client инкапсулирует HTTP-взаимодействие с каталогом товаров.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт HTTP-клиент для обращения к каталогу по указанному адресу.
func NewClient(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetProduct запрашивает товар по идентификатору.
func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := c.get(ctx, "/api/products/"+url.PathEscape(id), &p); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// ListProducts запрашивает товары, опционально отфильтрованные по категории.
func (c *Client) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	path := "/api/products"
	if category != "" {
		path += "?" + url.Values{"category": []string{category}}.Encode()
	}

	var products []model.Product
	if err := c.get(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("catalog client not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusTooManyRequests:
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	default:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
