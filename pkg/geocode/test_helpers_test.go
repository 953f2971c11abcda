package geocode

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/khanrumi/location-picker/internal/resilience"
)

// fastRetry retries quickly so transient-failure tests do not sleep.
func fastRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}
}

// newTestServer starts an httptest server and closes it with the test.
func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// newRewriteClient returns an HTTP client that sends every request for
// DefaultBaseURL to the test server instead.
func newRewriteClient(testServerURL string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:       http.DefaultTransport,
			testServer: testServerURL,
		},
	}
}

type rewriteTransport struct {
	base       http.RoundTripper
	testServer string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	orig := req.URL.String()
	if !strings.HasPrefix(orig, DefaultBaseURL) {
		return t.base.RoundTrip(req)
	}
	parsed, err := req.URL.Parse(t.testServer + "/v1/geocode/search" + orig[len(DefaultBaseURL):])
	if err != nil {
		return nil, err
	}
	newReq := req.Clone(req.Context())
	newReq.URL = parsed
	newReq.Host = parsed.Host
	return t.base.RoundTrip(newReq)
}
