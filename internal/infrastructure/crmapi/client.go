package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxErrorBody = 64 << 10

// Config configures the remote CRM client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond limits outbound calls; zero disables limiting.
	RequestsPerSecond float64
}

// Validator is implemented by response schemas.
type Validator interface {
	Validate() error
}

// Client issues requests against a fixed base URL and decodes typed responses.
// It adds no auth headers and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *logrus.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid CRM base URL %q", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{baseURL: base, http: httpClient, logger: logger}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

// BaseURL returns the origin requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Get(ctx context.Context, path []string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path []string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) Put(ctx context.Context, path []string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPut, path, query, body, out)
}

func (c *Client) Delete(ctx context.Context, path []string, query url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, out)
}

// resourceURL joins path segments onto the base URL. Each segment is escaped
// whole, so a "/" inside an id never adds a level, and the result keeps the
// service's trailing-slash convention.
func (c *Client) resourceURL(segments []string, query url.Values) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	b.WriteByte('/')
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, method string, path []string, query url.Values, body, out any) error {
	target := c.resourceURL(path, query)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, target, err)
		}
		reader = bytes.NewReader(b)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Method: method, URL: target, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log(method, target, 0, start, err)
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()
	c.log(method, target, resp.StatusCode, start, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ServiceError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    remoteMessage(raw),
			Body:       raw,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServiceError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: raw,
			Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &ServiceError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: raw,
				Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
		}
	}
	return nil
}

// remoteMessage pulls the human-readable message out of an error body.
func remoteMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, field := range []string{"message", "detail", "error"} {
		if s, ok := body[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) log(method, target string, status int, start time.Time, err error) {
	if c.logger == nil {
		return
	}
	fields := logrus.Fields{"method": method, "url": target, "status": status, "duration_ms": time.Since(start).Milliseconds()}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.WithFields(fields).Debug("crm api request canceled")
			return
		}
		c.logger.WithFields(fields).WithError(err).Warn("crm api request failed")
		return
	}
	c.logger.WithFields(fields).Debug("crm api request")
}
