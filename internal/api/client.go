package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantai/console/internal/model"
)

// Client is a thin HTTP client for the VanTai backend API. It handles
// Bearer token authentication, JSON marshaling, and automatic retry
// with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int

	mu    sync.RWMutex
	token string
}

// NewClient creates a new API client. The baseURL should be the root
// URL of the backend (e.g. https://api.vantai.example.com).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
	}
}

// SetToken sets the Bearer token attached to subsequent requests.
// An empty token clears authentication.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently configured Bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates with email and password. On failure the server's
// error message is returned unchanged. The client token is NOT updated;
// the session manager decides whether to adopt the new token.
func (c *Client) Login(
	ctx context.Context,
	email string,
	password string,
) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/users/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser resolves the user behind the configured token. Any non-2xx
// response means the token is not valid.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchOrders queries the order search endpoint. A non-empty customerID
// scopes the search to that customer's own orders; staff searches pass
// an empty customerID for a global search. No matches yields an empty
// slice, not an error.
func (c *Client) SearchOrders(
	ctx context.Context,
	query string,
	customerID string,
) ([]model.Order, error) {
	params := url.Values{}
	params.Set("q", query)
	if customerID != "" {
		params.Set("customer_id", customerID)
	}

	var orders []model.Order
	path := "/orders/search?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// GetOrder retrieves a single order summary by its tracking identifier.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	path := "/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// notificationEnvelope is the wire shape of the notification list.
type notificationEnvelope struct {
	Data []model.Notification `json:"data"`
}

// ListNotifications retrieves the full notification list in server
// order. A missing or null data field is treated as an empty list.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var envelope notificationEnvelope
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return []model.Notification{}, nil
	}
	return envelope.Data, nil
}

// MarkNotificationRead marks a single notification as read. Marking an
// already-read notification succeeds and leaves it read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	path := "/notifications/" + url.PathEscape(id) + "/mark-read"
	return c.do(ctx, http.MethodPatch, path, nil, nil)
}

// MarkNotificationUnread marks a single notification as unread.
func (c *Client) MarkNotificationUnread(ctx context.Context, id string) error {
	path := "/notifications/" + url.PathEscape(id) + "/mark-unread"
	return c.do(ctx, http.MethodPatch, path, nil, nil)
}

// MarkAllNotificationsRead marks every notification as read in a single
// bulk mutation.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/notifications/mark-all-read", nil, nil)
}

// ListAddresses retrieves the user's saved address book.
func (c *Client) ListAddresses(ctx context.Context) ([]model.Address, error) {
	var addresses []model.Address
	if err := c.do(ctx, http.MethodGet, "/addresses", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// CreateAddress saves a new address book entry and returns it with the
// server-assigned ID.
func (c *Client) CreateAddress(
	ctx context.Context,
	addr model.Address,
) (*model.Address, error) {
	var created model.Address
	if err := c.do(ctx, http.MethodPost, "/addresses", addr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteAddress removes an address book entry.
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	path := "/addresses/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListWarehouses retrieves the current warehouse statuses.
func (c *Client) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	if err := c.do(ctx, http.MethodGet, "/warehouses", nil, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

// ListVehicles retrieves the current vehicle statuses.
func (c *Client) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	if err := c.do(ctx, http.MethodGet, "/vehicles", nil, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// errorEnvelope is the wire shape of a backend error payload.
type errorEnvelope struct {
	Error string `json:"error"`
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	requestURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(
			ctx, method, requestURL, bodyReader,
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.New().String())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf(
				"rate limited (429) on %s %s", method, path,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{Message: serverMessage(respBody, "not authenticated")}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message: serverMessage(respBody, fmt.Sprintf(
					"unexpected status %d on %s %s",
					resp.StatusCode, method, path,
				)),
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// serverMessage extracts the backend's error field from a response body,
// falling back to the given message when the body has no usable error.
func serverMessage(body []byte, fallback string) string {
	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return fallback
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
