package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneymate/internal/core"
	"moneymate/internal/metrics"
)

type recorded struct {
	method string
	path   string
	auth   string
	reqID  string
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.reqID = r.Header.Get("X-Request-ID")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestClient_Endpoints(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		invoke     func(c *Client) error
		wantMethod string
		wantPath   string
		wantAuth   string
		wantBody   map[string]any
	}{
		{
			name: "signup",
			invoke: func(c *Client) error {
				_, err := c.SignUp(ctx, "a@b.co", "secret1")
				return err
			},
			wantMethod: "POST", wantPath: "/api/auth/signup",
			wantBody: map[string]any{"email": "a@b.co", "password": "secret1"},
		},
		{
			name: "verify",
			invoke: func(c *Client) error {
				_, err := c.Verify(ctx, "a@b.co", "12345")
				return err
			},
			wantMethod: "POST", wantPath: "/api/auth/verify",
			wantBody: map[string]any{"email": "a@b.co", "code": "12345"},
		},
		{
			name: "resend",
			invoke: func(c *Client) error {
				_, err := c.Resend(ctx, "a@b.co")
				return err
			},
			wantMethod: "POST", wantPath: "/api/auth/resend",
			wantBody: map[string]any{"email": "a@b.co"},
		},
		{
			name: "login",
			invoke: func(c *Client) error {
				_, err := c.Login(ctx, "a@b.co", "pw")
				return err
			},
			wantMethod: "POST", wantPath: "/api/auth/login",
			wantBody: map[string]any{"email": "a@b.co", "password": "pw"},
		},
		{
			name: "forgot password",
			invoke: func(c *Client) error {
				_, err := c.ForgotPassword(ctx, "a@b.co")
				return err
			},
			wantMethod: "POST", wantPath: "/api/auth/forgot-password",
			wantBody: map[string]any{"email": "a@b.co"},
		},
		{
			name: "reset password",
			invoke: func(c *Client) error {
				_, err := c.ResetPassword(ctx, "a@b.co", "12345", "newpass")
				return err
			},
			wantMethod: "POST", wantPath: "/api/auth/reset-password",
			wantBody: map[string]any{"email": "a@b.co", "code": "12345", "newPassword": "newpass"},
		},
		{
			name: "logout",
			invoke: func(c *Client) error {
				_, err := c.Logout(ctx, "tok")
				return err
			},
			wantMethod: "POST", wantPath: "/api/auth/logout", wantAuth: "Bearer tok",
		},
		{
			name: "set income",
			invoke: func(c *Client) error {
				_, err := c.SetIncome(ctx, "tok", 50000)
				return err
			},
			wantMethod: "PUT", wantPath: "/api/user/income", wantAuth: "Bearer tok",
			wantBody: map[string]any{"totalIncome": float64(50000)},
		},
		{
			name: "add expense",
			invoke: func(c *Client) error {
				_, err := c.AddExpense(ctx, "tok", core.NewExpense{Name: "Rent", Amount: 20000, Category: core.Essentials})
				return err
			},
			wantMethod: "POST", wantPath: "/api/user/expenses", wantAuth: "Bearer tok",
			wantBody: map[string]any{"name": "Rent", "amount": float64(20000), "category": "essentials"},
		},
		{
			name: "delete expense",
			invoke: func(c *Client) error {
				_, err := c.DeleteExpense(ctx, "tok", "abc123")
				return err
			},
			wantMethod: "DELETE", wantPath: "/api/user/expenses/abc123", wantAuth: "Bearer tok",
		},
		{
			name: "change password",
			invoke: func(c *Client) error {
				_, err := c.ChangePassword(ctx, "tok", "newpass")
				return err
			},
			wantMethod: "PUT", wantPath: "/api/user/change-password", wantAuth: "Bearer tok",
			wantBody: map[string]any{"password": "newpass"},
		},
		{
			name: "delete account",
			invoke: func(c *Client) error {
				_, err := c.DeleteAccount(ctx, "tok")
				return err
			},
			wantMethod: "DELETE", wantPath: "/api/user/delete-account", wantAuth: "Bearer tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newServer(t, http.StatusOK, `{"message":"ok"}`)
			c := New(srv.URL + "/api/")

			require.NoError(t, tt.invoke(c))
			assert.Equal(t, tt.wantMethod, rec.method)
			assert.Equal(t, tt.wantPath, rec.path)
			assert.Equal(t, tt.wantAuth, rec.auth)
			assert.NotEmpty(t, rec.reqID)
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, rec.body)
			}
		})
	}
}

func TestClient_Profile(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{
		"totalIncome": 50000,
		"totalExpenses": 28000,
		"remaining": 22000,
		"expenses": [
			{"_id": "e1", "name": "Rent", "amount": 20000, "category": "essentials", "createdAt": "2024-03-01T10:00:00Z"},
			{"id": "e2", "name": "Dinner", "amount": 5000, "category": "flexible"}
		],
		"categoryTotals": {"essentials": 20000, "flexible": 5000, "non-essentials": 0}
	}`)

	p, err := New(srv.URL).Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", rec.auth)
	assert.Equal(t, int64(50000), p.TotalIncome)
	require.Len(t, p.Expenses, 2)
	assert.Equal(t, "e1", p.Expenses[0].ID)
	assert.Equal(t, "e2", p.Expenses[1].ID)
	assert.Equal(t, core.Flexible, p.Expenses[1].Category)
	assert.Equal(t, int64(25000), p.Summary().TotalExpenses)
}

func TestClient_TokenResponse(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"message":"Logged in","token":"abc"}`)
	resp, err := New(srv.URL).Login(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)
	assert.Equal(t, "Logged in", resp.Message)
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantMessage  string
		unauthorized bool
		forbidden    bool
		invalidCode  bool
	}{
		{name: "unauthorized", status: 401, body: `{"message":"Token expired"}`, wantMessage: "Token expired", unauthorized: true, invalidCode: true},
		{name: "forbidden", status: 403, body: `{"message":"Please verify your email"}`, wantMessage: "Please verify your email", forbidden: true},
		{name: "invalid code", status: 400, body: `{"message":"Invalid OTP"}`, wantMessage: "Invalid OTP", invalidCode: true},
		{name: "non-json body", status: 502, body: `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			_, err := New(srv.URL).Profile(context.Background(), "tok")
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, Message(err))
			assert.Equal(t, tt.unauthorized, IsUnauthorized(err))
			assert.Equal(t, tt.forbidden, IsForbidden(err))
			assert.Equal(t, tt.invalidCode, IsInvalidCode(err))
			assert.False(t, IsTransport(err))
			if tt.wantMessage == "" {
				assert.Contains(t, err.Error(), "unexpected status")
			} else {
				assert.Equal(t, tt.wantMessage, err.Error())
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Profile(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsUnauthorized(err))
	assert.Empty(t, Message(err))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, WithTimeout(20*time.Millisecond)).Profile(context.Background(), "tok")
	assert.True(t, IsTransport(err))
}

func TestClient_RecordsMetrics(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"message":"Deleted"}`)
	m := metrics.New()
	c := New(srv.URL, WithMetrics(m))

	_, err := c.DeleteExpense(context.Background(), "tok", "e1")
	require.NoError(t, err)
	_, err = c.DeleteExpense(context.Background(), "tok", "e2")
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/user/expenses/:id", "DELETE", "200")))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	got, ok := TokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)
}
