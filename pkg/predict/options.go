package predict

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the prediction service address used when none is configured.
const DefaultEndpoint = "http://127.0.0.1:8000/predict"

// Option customises a Client.
type Option func(*Client)

// WithEndpoint overrides the prediction URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout bounds each request. Zero disables the client-side timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient swaps the underlying transport client, mainly for tests. The
// client is copied, so WithTimeout never changes the caller's value.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger routes transport diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}
