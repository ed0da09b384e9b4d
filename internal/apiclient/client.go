// Package apiclient talks to the tourist safety HTTP API on behalf of a session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"backend-touristsafety/internal/logger"
)

const DefaultTimeout = 10 * time.Second

// User facing notices raised by the response handling.
const (
	NoticeSessionExpired = "Session expired. Please login again."
	NoticeServerError    = "Server error. Please try again later."
	NoticeTimeout        = "Request timeout. Please check your connection."
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrServer         = errors.New("server error")
	ErrConnectivity   = errors.New("request timed out")
)

// StatusError is a non-2xx response that has no dedicated handling.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Code, e.Message)
}

// Authenticator supplies request headers and ends the session when the API
// rejects the token. *session.Session satisfies it.
type Authenticator interface {
	AuthHeader(ctx context.Context) map[string]string
	Logout(ctx context.Context)
}

type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
	notifier   Notifier
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithAuth(a Authenticator) Option {
	return func(c *Client) { c.auth = a }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends in as JSON (when non-nil) and decodes the response into out (when non-nil).
//
// With an Authenticator, a 401 logs the session out and yields ErrSessionExpired.
// Without one, a 401 is returned as a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		for k, v := range c.auth.AuthHeader(ctx) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.notify(NoticeTimeout)
			return fmt.Errorf("%w: %s %s", ErrConnectivity, method, path)
		}
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized && c.auth != nil:
		logger.L().Warn("api_session_expired", "method", method, "path", path)
		c.auth.Logout(ctx)
		c.notify(NoticeSessionExpired)
		return ErrSessionExpired
	case resp.StatusCode >= http.StatusInternalServerError:
		c.notify(NoticeServerError)
		return fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) notify(msg string) {
	if c.notifier != nil {
		c.notifier.Notify(msg)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Health reports the API's health payload.
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	err := c.Do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}
