package client

import (
	"math/rand"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// retryPolicy governs how do retries network failures, 5xx responses and
// 429s without a Retry-After header.
type retryPolicy struct {
	max     int
	waitMin time.Duration
	waitMax time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{max: 3, waitMin: 500 * time.Millisecond, waitMax: 5 * time.Second}
}

// backoff is the wait before retry number attempt (1-based): exponential from
// waitMin, capped at waitMax, plus up to 25% jitter.
func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.waitMin * time.Duration(1<<uint(attempt-1))
	if d > p.waitMax || d <= 0 {
		d = p.waitMax
	}
	if quarter := int64(d / 4); quarter > 0 {
		d += time.Duration(rand.Int63n(quarter))
	}
	return d
}

// WithHTTPClient replaces the transport client.  A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each HTTP attempt.  Dashboard queries over a large
// corpus can take longer than the 30s default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithLogger routes request tracing to l.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAPIKey sends the key as a bearer token, for deployments behind an
// authenticating proxy.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRetryMax sets how many times a failed request is retried.  Negative
// values are ignored; zero disables retries.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retry.max = n
		}
	}
}

// WithRetryWait sets the backoff bounds.  max is ignored unless min is
// positive and max >= min.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min <= 0 {
			return
		}
		c.retry.waitMin = min
		if max >= min {
			c.retry.waitMax = max
		}
	}
}

// WithUserAgent overrides the reviewpulse-go-sdk User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

//Personal.AI order the ending
