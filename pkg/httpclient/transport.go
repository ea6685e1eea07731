package httpclient

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/pkg/logger"
)

type authTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	if t.token != "" {
		reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends a bearer token on every request
func WithAuthToken(token string) Option {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{token: token, transport: rt}
	})
}

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.transport.RoundTrip(req)

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		logger.Debug("[HTTP] Outbound request failed", append(fields, zap.Error(err))...)
		return resp, err
	}
	logger.Debug("[HTTP] Outbound request", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

// WithRequestLogging logs method, URL, status and duration of every request
func WithRequestLogging() Option {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{transport: rt}
	})
}
