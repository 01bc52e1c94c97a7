package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/ppiankov/sitepolicy/internal/models"
	"github.com/ppiankov/sitepolicy/pkg/config"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
)

// Session is the authenticated controller handle the report needs.
type Session interface {
	Login(ctx context.Context, email, password string) error
	UseToken(ctx context.Context, token string) error
	TenantID() string
	Tenant(ctx context.Context) (*Tenant, error)
	Sites(ctx context.Context) ([]models.Site, error)
	List(ctx context.Context, collection Collection) ([]byte, error)
	Logout(ctx context.Context) error
}

// Client talks to the controller REST API. It is not safe for
// concurrent use; the tool drives it from a single goroutine.
type Client struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
	tenantID   string
}

var _ Session = (*Client)(nil)

// NewClient creates a controller client for cfg.Controller.
func NewClient(cfg *config.Config) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", ContentTypeJSON)

	cbSettings := gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cbMaxRequests,
		Interval:    cbInterval,
		Timeout:     cbTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cbFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened", slog.String("cb_name", name))
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open", slog.String("cb_name", name))
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed", slog.String("cb_name", name))
			}
		},
	}

	return &Client{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    strings.TrimRight(cfg.Controller, "/"),
	}
}

// TenantID returns the tenant bound by the last successful login, or "".
func (c *Client) TenantID() string {
	return c.tenantID
}

// Login authenticates with email and password. The controller sets the
// session cookie; a returned x_auth_token is also adopted when present.
func (c *Client) Login(ctx context.Context, email, password string) error {
	c.tenantID = ""

	body, err := c.do(ctx, "login", http.MethodPost, pathLogin, &loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}

	if token := gjson.GetBytes(body, "x_auth_token").String(); token != "" {
		c.httpClient.SetHeader(HeaderAuthToken, token)
	}

	return c.loadProfile(ctx)
}

// UseToken authenticates with a static auth token.
func (c *Client) UseToken(ctx context.Context, token string) error {
	c.tenantID = ""
	c.httpClient.SetHeader(HeaderAuthToken, token)
	return c.loadProfile(ctx)
}

func (c *Client) loadProfile(ctx context.Context) error {
	body, err := c.do(ctx, "profile", http.MethodGet, pathProfile, nil)
	if err != nil {
		return err
	}

	tenantID := gjson.GetBytes(body, "tenant_id").String()
	if tenantID == "" {
		return ErrNoTenant
	}
	c.tenantID = tenantID

	slog.Debug("authenticated",
		slog.String("tenant_id", tenantID),
		slog.String("email", gjson.GetBytes(body, "email").String()),
	)
	return nil
}

// Tenant fetches the authenticated tenant's info.
func (c *Client) Tenant(ctx context.Context) (*Tenant, error) {
	if c.tenantID == "" {
		return nil, ErrNotAuthenticated
	}

	body, err := c.do(ctx, "get tenant", http.MethodGet, fmt.Sprintf(pathTenant, c.tenantID), nil)
	if err != nil {
		return nil, err
	}

	return &Tenant{
		ID:   c.tenantID,
		Name: gjson.GetBytes(body, "name").String(),
	}, nil
}

// Sites lists the tenant's sites in controller order.
func (c *Client) Sites(ctx context.Context) ([]models.Site, error) {
	if c.tenantID == "" {
		return nil, ErrNotAuthenticated
	}

	body, err := c.do(ctx, "get sites", http.MethodGet, fmt.Sprintf(pathSites, c.tenantID), nil)
	if err != nil {
		return nil, err
	}

	if !gjson.GetBytes(body, "items").IsArray() {
		return nil, fmt.Errorf("%w: site listing has no items", ErrInvalidResponse)
	}

	var list models.SiteList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode sites: %v", ErrInvalidResponse, err)
	}

	return list.Items, nil
}

// List returns the raw body of a tenant-scoped collection listing.
func (c *Client) List(ctx context.Context, collection Collection) ([]byte, error) {
	if c.tenantID == "" {
		return nil, ErrNotAuthenticated
	}

	path := fmt.Sprintf(pathListing, collection.Version, c.tenantID, collection.Name)
	return c.do(ctx, "get "+collection.Name, http.MethodGet, path, nil)
}

// Logout ends the session and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, "logout", http.MethodGet, pathLogout, nil)
	c.httpClient.Header.Del(HeaderAuthToken)
	c.tenantID = ""
	return err
}

// do runs one request through the circuit breaker. Only transport
// failures count against the breaker; non-2xx responses are returned
// as *APIError without tripping it.
func (c *Client) do(ctx context.Context, operation, method, path string, payload any) ([]byte, error) {
	start := time.Now()
	requestID := uuid.NewString()

	result, err := c.cb.Execute(func() (interface{}, error) {
		req := c.httpClient.R().
			SetContext(ctx).
			SetHeader(HeaderRequestID, requestID)
		if payload != nil {
			req.SetHeader(HeaderContentType, ContentTypeJSON).SetBody(payload)
		}

		resp, err := req.Execute(method, c.baseURL+path)
		if err != nil {
			return nil, &ConnectionError{Operation: operation, Cause: err}
		}

		latencyMs := time.Since(start).Milliseconds()

		if !resp.IsSuccess() {
			apiErr := &APIError{
				Operation:  operation,
				StatusCode: resp.StatusCode(),
				Body:       strings.TrimSpace(string(resp.Body())),
			}
			slog.Debug("controller api error",
				slog.String("operation", operation),
				slog.String("request_id", requestID),
				slog.Int("http_status", resp.StatusCode()),
				slog.Int64("latency_ms", latencyMs),
			)
			return apiErr, nil
		}

		slog.Debug("controller api success",
			slog.String("operation", operation),
			slog.String("request_id", requestID),
			slog.Int64("latency_ms", latencyMs),
		)
		return resp.Body(), nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	if apiErr, ok := result.(*APIError); ok {
		return nil, apiErr
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, ErrInvalidResponse
	}
	return body, nil
}
