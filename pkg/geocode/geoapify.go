package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/khanrumi/location-picker/internal/resilience"
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

// geoapifyResponse is the GeoJSON FeatureCollection returned by the search API.
type geoapifyResponse struct {
	Features []struct {
		Properties geoapifyProperties `json:"properties"`
	} `json:"features"`
}

type geoapifyProperties struct {
	PlaceID     string  `json:"place_id"`
	Formatted   string  `json:"formatted"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	State       string  `json:"state"`
	City        string  `json:"city"`
	Suburb      string  `json:"suburb"`
	Postcode    string  `json:"postcode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ResultType  string  `json:"result_type"`
	Rank        struct {
		Confidence float64 `json:"confidence"`
	} `json:"rank"`
}

// Search implements Client.
func (g *geocoder) Search(ctx context.Context, text string) ([]Place, error) {
	if g.apiKey == "" {
		return nil, eris.New("geocode: api key not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("geocode: empty query")
	}

	return resilience.DoVal(ctx, g.retry, func(ctx context.Context) ([]Place, error) {
		return g.search(ctx, text)
	})
}

func (g *geocoder) search(ctx context.Context, text string) ([]Place, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"text":   {text},
		"apiKey": {g.apiKey},
	}
	if g.limit > 0 {
		params.Set("limit", strconv.Itoa(g.limit))
	}
	if g.lang != "" {
		params.Set("lang", g.lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}
	if len(body) > maxResponseBytes {
		return nil, eris.Errorf("geocode: response exceeds %d bytes", maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return nil, apiErr
	}

	var parsed geoapifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	places := make([]Place, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		p := f.Properties
		places = append(places, Place{
			PlaceID:     p.PlaceID,
			Formatted:   p.Formatted,
			Country:     p.Country,
			CountryCode: p.CountryCode,
			State:       p.State,
			City:        p.City,
			Suburb:      p.Suburb,
			Postcode:    p.Postcode,
			Lat:         p.Lat,
			Lon:         p.Lon,
			ResultType:  p.ResultType,
			Confidence:  p.Rank.Confidence,
		})
	}
	return places, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
