// Package cartclient is the storefront's client-side cart: a denormalized
// local mirror of the server cart that applies every mutation optimistically
// before the network round-trip, so the UI updates instantly.
//
// The cache is never authoritative. Reconciliation is deliberately blunt:
// Refresh overwrites the whole local state with the server's answer, and a
// mutation the server rejected is NOT rolled back at the call site; the
// caller shows the returned error and the next Refresh straightens the cache
// out. One rule, applied everywhere, instead of per-call-site rollbacks.
package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/shopspring/decimal"
)

// Item is one cached cart line. Identity is (ProductID, VariantColor), the
// same key the server uses.
type Item struct {
	ProductID    uint            `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Image        string          `json:"image"`
	Stock        int             `json:"stock"`
	VariantColor string          `json:"variant_color"`
	VariantHex   string          `json:"variant_hex"`
}

type envelope struct {
	OK             bool            `json:"ok"`
	Message        string          `json:"message"`
	AvailableStock int             `json:"available_stock"`
	Items          []Item          `json:"items"`
	Total          decimal.Decimal `json:"total"`
}

// ServerError is a rejection the server reported ({ok:false}). The local
// cache may be ahead of the server until the next Refresh.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("cart server rejected the operation (status %d): %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string

	mu    sync.Mutex
	items []Item
}

type Option func(*Client)

// WithToken attaches a bearer token; mutations then hit the user cart
// instead of the anonymous cookie cart.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client against the storefront API. The HTTP client carries a
// cookie jar so the anonymous cart_session_id cookie round-trips like it
// would in a browser.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// Items returns a copy of the cached lines.
func (c *Client) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total recomputes the cached total locally so it tracks optimistic changes.
func (c *Client) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Refresh fetches the authoritative cart and overwrites the local cache
// entirely. Server wins; no client-side merging.
func (c *Client) Refresh(ctx context.Context) error {
	env, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = env.Items
	c.mu.Unlock()
	return nil
}

// Add applies the line locally first, then tells the server. product carries
// the display fields the cache needs; qty is how many units to add.
func (c *Client) Add(ctx context.Context, product Item, qty int) error {
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	if it := c.find(product.ProductID, product.VariantColor); it != nil {
		it.Quantity += qty
	} else {
		product.Quantity = qty
		c.items = append(c.items, product)
	}
	c.mu.Unlock()

	_, err := c.do(ctx, http.MethodPost, "/cart/items", map[string]interface{}{
		"product_id":    product.ProductID,
		"quantity":      qty,
		"variant_color": product.VariantColor,
	})
	return err
}

// UpdateQuantity sets a line's quantity locally, then on the server.
func (c *Client) UpdateQuantity(ctx context.Context, productID uint, variantColor string, qty int) error {
	c.mu.Lock()
	if it := c.find(productID, variantColor); it != nil {
		it.Quantity = qty
	}
	c.mu.Unlock()

	_, err := c.do(ctx, http.MethodPut, "/cart/items", map[string]interface{}{
		"product_id":    productID,
		"quantity":      qty,
		"variant_color": variantColor,
	})
	return err
}

// Remove drops the line locally, then on the server.
func (c *Client) Remove(ctx context.Context, productID uint, variantColor string) error {
	c.mu.Lock()
	kept := c.items[:0]
	for _, it := range c.items {
		if !(it.ProductID == productID && it.VariantColor == variantColor) {
			kept = append(kept, it)
		}
	}
	c.items = kept
	c.mu.Unlock()

	path := fmt.Sprintf("/cart/items/%d", productID)
	if variantColor != "" {
		path += "?variant_color=" + url.QueryEscape(variantColor)
	}
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// Clear empties the cache and the server cart.
func (c *Client) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	_, err := c.do(ctx, http.MethodDelete, "/cart", nil)
	return err
}

// find assumes the caller holds the lock.
func (c *Client) find(productID uint, variantColor string) *Item {
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].VariantColor == variantColor {
			return &c.items[i]
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding cart response: %w", err)
	}
	if !env.OK {
		return nil, &ServerError{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}
