package httpclient

import "time"

// Option configures the underlying http.Client
type Option func(*config)

// WithConnTimeout sets the dial timeout
func WithConnTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.connTimeout = timeout
	}
}

// WithRequestTimeout sets the overall per-request timeout
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.requestTimeout = timeout
	}
}

func WithKeepAlive(keepAlive time.Duration) Option {
	return func(c *config) {
		c.keepAlive = keepAlive
	}
}

func WithTLSHandshakeTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.tlsHandshakeTimeout = timeout
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.responseHeaderTimeout = timeout
	}
}

func WithIdleConnTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.idleConnTimeout = timeout
	}
}

func WithMaxIdleConns(maxConns int) Option {
	return func(c *config) {
		c.maxIdleConns = maxConns
	}
}

func WithMaxIdleConnsPerHost(maxConns int) Option {
	return func(c *config) {
		c.maxIdleConnsPerHost = maxConns
	}
}

// WithTransport wraps the base transport; wrappers apply in registration order
func WithTransport(transport TransportFunc) Option {
	return func(c *config) {
		c.transports = append(c.transports, transport)
	}
}

func WithInsecureSkipVerify(skip bool) Option {
	return func(c *config) {
		c.insecureSkipVerify = skip
	}
}

// WithMaxResponseBytes caps how much of a response body is read
func WithMaxResponseBytes(n int64) Option {
	return func(c *config) {
		c.maxResponseBytes = n
	}
}
