// Package medusa is a small client for the Medusa v2 Store and Admin REST APIs.
package medusa

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

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/fittinglab/storefront/internal/metrics"
)

type scope string

const (
	scopeStore scope = "store"
	scopeAdmin scope = "admin"
)

type Options struct {
	BaseURL        string
	PublishableKey string
	SecretAPIKey   string
	// MaxRetries bounds retries of idempotent reads on transport errors and 5xx.
	MaxRetries   int
	RetryBackoff time.Duration
	// RPS caps outbound requests per second; 0 disables the limiter.
	RPS        int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

type Client struct {
	baseURL        string
	publishableKey string
	secretAPIKey   string
	maxRetries     int
	retryBackoff   time.Duration
	http           *http.Client
	limiter        *rate.Limiter
	logger         *logrus.Logger
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		publishableKey: opts.PublishableKey,
		secretAPIKey:   opts.SecretAPIKey,
		maxRetries:     opts.MaxRetries,
		retryBackoff:   backoff,
		http:           hc,
		logger:         logger,
	}
	if opts.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS)
	}
	return c
}

// call performs one API request and decodes the JSON response into out (if non-nil).
// Only GETs are retried; writes are sent once.
func (c *Client) call(ctx context.Context, sc scope, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("medusa: encode %s %s: %w", method, path, err)
		}
		payload = b
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.retryBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		respBody, status, err := c.once(ctx, sc, method, u, payload)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return err
			}
			c.logger.WithError(err).WithFields(logrus.Fields{"method": method, "path": path, "attempt": attempt + 1}).Warn("medusa request failed")
			continue
		}
		if status >= 500 {
			lastErr = newAPIError(status, respBody)
			c.logger.WithFields(logrus.Fields{"method": method, "path": path, "status": status, "attempt": attempt + 1}).Warn("medusa server error")
			continue
		}
		if status >= 400 {
			return newAPIError(status, respBody)
		}
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("medusa: decode %s %s: %w", method, path, err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, sc scope, method, u string, payload []byte) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch sc {
	case scopeStore:
		if c.publishableKey != "" {
			req.Header.Set("x-publishable-api-key", c.publishableKey)
		}
	case scopeAdmin:
		// Medusa secret API keys authenticate as the basic-auth username.
		req.SetBasicAuth(c.secretAPIKey, "")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(string(sc), method, 0, time.Since(start))
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	metrics.ObserveUpstream(string(sc), method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return b, resp.StatusCode, nil
}

// IsNotFound reports whether err is a Medusa 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
