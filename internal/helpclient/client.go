// Package helpclient fetches the help document from a help content service.
package helpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/loanbuddy/helpctl/internal/help"
)

// HelpPath is the endpoint path of the help document.
const HelpPath = "/api/help"

// RetryPolicy bounds repeated attempts after a retryable failure. The zero
// value performs a single attempt.
type RetryPolicy struct {
	Attempts int           // extra attempts after the first
	Backoff  time.Duration // delay before the first retry, doubled each time
}

// Client talks to one help content service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retry   RetryPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTP = hc
		}
	}
}

// WithTimeout bounds each request. No timeout is applied by default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.HTTP
			hc.Timeout = d
			c.HTTP = &hc
		}
	}
}

// WithRetry sets the retry policy.
func WithRetry(p RetryPolicy) Option {
	return func(c *Client) {
		if p.Attempts < 0 {
			p.Attempts = 0
		}
		c.Retry = p
	}
}

// New returns a Client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the full help document URL.
func (c *Client) URL() string {
	return c.BaseURL + HelpPath
}

// Fetch retrieves and decodes the help document. Every failure is returned
// as a *FetchError.
func (c *Client) Fetch(ctx context.Context) (*help.Response, error) {
	backoff := c.Retry.Backoff
	var lastErr error
	for attempt := 0; attempt <= c.Retry.Attempts; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying help fetch", "attempt", attempt, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, &FetchError{Kind: KindTransport, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := c.fetchOnce(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !Retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context) (*help.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind:   KindProtocol,
			Status: resp.StatusCode,
			Err:    errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	doc, err := help.Decode(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindDecode, Err: err}
	}
	return doc, nil
}
