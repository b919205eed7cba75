package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/app/models"
	"github.com/shopfront/shopfront/internal/app/observability/metrics"
	"github.com/shopfront/shopfront/internal/pkg/config"
)

// Client is a thin wrapper over the commerce backend's REST API. It attaches
// the supplied bearer token to every request and maps non-2xx responses to
// StatusError. No retries, no response caching.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// ProductInput is the admin create/update payload. Price and quantity are
// already coerced to numbers by the caller; they must never be sent as
// strings.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Register creates a new account. No token is required.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	return c.do(ctx, http.MethodPost, "/users/register", "", payload, nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", "", payload, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me resolves a bearer token to the profile it belongs to.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Products fetches the public catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddToCart adds quantity of a product to the viewer's backend-held cart.
func (c *Client) AddToCart(ctx context.Context, token string, productID, quantity int) error {
	payload := map[string]int{
		"product_id": productID,
		"quantity":   quantity,
	}
	return c.do(ctx, http.MethodPost, "/cart/add", token, payload, nil)
}

// Cart fetches the viewer's cart, each item embedding its current product.
func (c *Client) Cart(ctx context.Context, token string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveFromCart removes a cart row by its product id.
func (c *Client) RemoveFromCart(ctx context.Context, token string, productID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", productID), token, nil, nil)
}

// Checkout starts a hosted payment session and returns the redirect URL the
// backend hands back. The URL may be empty; the caller decides how to report
// that.
func (c *Client) Checkout(ctx context.Context, token string) (string, error) {
	var resp checkoutResponse
	if err := c.do(ctx, http.MethodPost, "/orders/checkout", token, nil, &resp); err != nil {
		return "", err
	}
	return resp.CheckoutURL, nil
}

// AdminProducts fetches the catalog through the admin-gated listing.
func (c *Client) AdminProducts(ctx context.Context, token string) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/admin/products", token, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a catalog record and returns the stored copy.
func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/admin/products", token, in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces a catalog record and returns the stored copy.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int, in ProductInput) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/products/%d", id), token, in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a catalog record.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/products/%d", id), token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s request", method, path)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "build %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.observe(ctx, method, path, resp, start)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail errorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &detail)
		c.logger.Warn("Backend request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &StatusError{Code: resp.StatusCode, Detail: detail.Detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "decode %s %s response", method, path)
		}
	}
	return nil
}

func (c *Client) observe(ctx context.Context, method, path string, resp *http.Response, start time.Time) {
	m := metrics.Get()
	if m == nil {
		return
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	m.BackendRequestDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
			attribute.Int("status", status),
		))
}
