package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	auth "github.com/supabase-community/auth-go"

	contractx "github.com/spinlab/coach/agent/contract"
)

// ErrInvalidToken matches contract.ErrUnauthorized.
var ErrInvalidToken = fmt.Errorf("supabase: invalid or expired token: %w", contractx.ErrUnauthorized)

type Config struct {
	URL     string        `split_words:"true" required:"true"`
	AnonKey string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Client resolves access tokens through Supabase Auth.
type Client struct {
	auth      auth.Client
	transport http.RoundTripper
	timeout   time.Duration
}

type User struct {
	ID    string
	Email string
	Role  string
}

type ClientOption func(*Client)

// WithHTTPClient reuses the transport and timeout of client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client == nil {
			return
		}
		if client.Transport != nil {
			c.transport = client.Transport
		}
		if client.Timeout > 0 {
			c.timeout = client.Timeout
		}
	}
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("supabase url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}

	anonKey := strings.TrimSpace(cfg.AnonKey)
	if anonKey == "" {
		return nil, errors.New("supabase anon key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		// the project reference is unused once the auth url is overridden
		auth:      auth.New("", anonKey).WithCustomAuthURL(strings.TrimRight(baseURL, "/") + "/auth/v1"),
		transport: http.DefaultTransport,
		timeout:   timeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// GetUser resolves the user that owns an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, ErrInvalidToken
	}

	scope := &requestScope{ctx: ctx, base: c.transport}
	resp, err := c.auth.
		WithClient(http.Client{Timeout: c.timeout, Transport: scope}).
		WithToken(token).
		GetUser()
	if err != nil {
		if scope.status == http.StatusUnauthorized || scope.status == http.StatusForbidden {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("supabase get user: %w", err)
	}
	if resp == nil || resp.ID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return &User{ID: resp.ID.String(), Email: resp.Email, Role: resp.Role}, nil
}

// Authenticate returns the user id for a token.
func (c *Client) Authenticate(ctx context.Context, accessToken string) (string, error) {
	user, err := c.GetUser(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// requestScope binds the auth client's requests to ctx and keeps the last
// response status, which the client only reports inside its error text.
type requestScope struct {
	ctx    context.Context
	base   http.RoundTripper
	status int
}

func (s *requestScope) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := s.base.RoundTrip(req.WithContext(s.ctx))
	if resp != nil {
		s.status = resp.StatusCode
	}
	return resp, err
}
