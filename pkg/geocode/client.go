// Package geocode resolves free-text place queries through the Geoapify
// geocoding search API.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/khanrumi/location-picker/internal/resilience"
)

// DefaultBaseURL is the Geoapify geocoding search endpoint.
const DefaultBaseURL = "https://api.geoapify.com/v1/geocode/search"

// Client geocodes free-text queries.
type Client interface {
	// Search returns the provider's matches for text, best match first.
	// An empty slice means the provider found nothing.
	Search(ctx context.Context, text string) ([]Place, error)
}

// Place is one geocoding match.
type Place struct {
	PlaceID     string
	Formatted   string
	Country     string
	CountryCode string
	State       string
	City        string
	Suburb      string
	Postcode    string
	Lat         float64
	Lon         float64
	ResultType  string // "city", "street", "building", ...
	Confidence  float64
}

// APIError is returned when the provider responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("geocode: geoapify returned status %d: %s", e.StatusCode, e.Body)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithBaseURL overrides the search endpoint.
func WithBaseURL(url string) Option {
	return func(g *geocoder) {
		g.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. A client passed through
// WithHTTPClient is copied rather than modified.
func WithTimeout(d time.Duration) Option {
	return func(g *geocoder) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRateLimit sets the requests-per-second limit for provider calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		if rps > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		}
	}
}

// WithRetry sets the retry policy for transient provider failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(g *geocoder) {
		g.retry = cfg
	}
}

// WithLimit caps the number of matches requested from the provider.
func WithLimit(n int) Option {
	return func(g *geocoder) {
		g.limit = n
	}
}

// WithLang requests results in the given language (ISO 639-1).
func WithLang(lang string) Option {
	return func(g *geocoder) {
		g.lang = lang
	}
}

type geocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
	limit      int
	lang       string
}

// NewClient creates a Geoapify-backed Client.
func NewClient(apiKey string, opts ...Option) Client {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("geoapify")

	g := &geocoder{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 5), // free plan allows 5 req/s
		retry:      retry,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.timeout > 0 {
		hc := *g.httpClient
		hc.Timeout = g.timeout
		g.httpClient = &hc
	}
	return g
}
