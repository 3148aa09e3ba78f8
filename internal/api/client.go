// Package api is a client for the budgeting HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"moneymate/internal/core"
	"moneymate/internal/log"
	"moneymate/internal/metrics"
)

const maxBodyBytes = 1 << 20

// MessageResponse is the body most endpoints answer with.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by login and verification.
type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	metrics    metrics.Recorder
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentAPI) }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:3000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.Discard(),
		metrics:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) SignUp(ctx context.Context, email, password string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "signup", method: http.MethodPost, path: "/auth/signup",
		body: map[string]string{"email": email, "password": password}}, &out)
	return out, err
}

func (c *Client) Verify(ctx context.Context, email, code string) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, call{op: "verify", method: http.MethodPost, path: "/auth/verify",
		body: map[string]string{"email": email, "code": code}}, &out)
	return out, err
}

func (c *Client) Resend(ctx context.Context, email string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "resend", method: http.MethodPost, path: "/auth/resend",
		body: map[string]string{"email": email}}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/auth/login",
		body: map[string]string{"email": email, "password": password}}, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "forgot password", method: http.MethodPost, path: "/auth/forgot-password",
		body: map[string]string{"email": email}}, &out)
	return out, err
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "reset password", method: http.MethodPost, path: "/auth/reset-password",
		body: map[string]string{"email": email, "code": code, "newPassword": newPassword}}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context, token string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "logout", method: http.MethodPost, path: "/auth/logout", token: token}, &out)
	return out, err
}

func (c *Client) Profile(ctx context.Context, token string) (core.Profile, error) {
	var out core.Profile
	err := c.do(ctx, call{op: "fetch profile", method: http.MethodGet, path: "/user/profile", token: token}, &out)
	return out, err
}

func (c *Client) SetIncome(ctx context.Context, token string, totalIncome int64) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "set income", method: http.MethodPut, path: "/user/income", token: token,
		body: map[string]int64{"totalIncome": totalIncome}}, &out)
	return out, err
}

func (c *Client) AddExpense(ctx context.Context, token string, e core.NewExpense) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "add expense", method: http.MethodPost, path: "/user/expenses", token: token,
		body: e}, &out)
	return out, err
}

func (c *Client) DeleteExpense(ctx context.Context, token, id string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "delete expense", method: http.MethodDelete,
		path: "/user/expenses/" + url.PathEscape(id), route: "/user/expenses/:id", token: token}, &out)
	return out, err
}

func (c *Client) ChangePassword(ctx context.Context, token, password string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "change password", method: http.MethodPut, path: "/user/change-password", token: token,
		body: map[string]string{"password": password}}, &out)
	return out, err
}

func (c *Client) DeleteAccount(ctx context.Context, token string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{op: "delete account", method: http.MethodDelete, path: "/user/delete-account", token: token}, &out)
	return out, err
}

type call struct {
	op     string
	method string
	path   string
	// route is the path template used as a metric label; defaults to path.
	route string
	token string
	body  any
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	route := cl.route
	if route == "" {
		route = cl.path
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(route, cl.method, 0, elapsed)
		c.logger.DebugContext(ctx, "API request failed",
			log.NewFields().
				WithRequestID(requestID).
				WithHTTPCall(cl.method, route, 0, elapsed.Milliseconds()).
				WithError(err).ToSlice()...)
		return &TransportError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(route, cl.method, resp.StatusCode, elapsed)
	c.logger.DebugContext(ctx, "API request",
		log.NewFields().
			WithRequestID(requestID).
			WithHTTPCall(cl.method, route, resp.StatusCode, elapsed.Milliseconds()).ToSlice()...)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: cl.op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg MessageResponse
		// Non-JSON error bodies leave Message empty.
		_ = json.Unmarshal(raw, &msg)
		return &Error{Op: cl.op, StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}
