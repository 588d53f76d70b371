// Package lookup holds the external adapters behind the intent router:
// weather, directions and web search. Each adapter owns one opaque
// external service (or a geocode-then-call chain) and normalizes its
// answer into the common (text, sources) shape.
//
// Adapters with a missing credential degrade to a localized
// "not configured" message with empty sources instead of erroring.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Source identifies where an adapter's answer came from.
type Source struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Result is the normalized adapter answer.
type Result struct {
	Text    string
	Sources []Source
}

// httpGetJSON issues a GET and decodes the JSON body into out.
// Non-2xx statuses are errors; bodies are drained so connections can be
// reused.
func httpGetJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Host, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", req.URL.Host, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Host, err)
	}
	return nil
}

func defaultClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// geoPoint is a resolved place.
type geoPoint struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// geocoder resolves free-text place names via the Open-Meteo geocoding
// API, which needs no key. Shared by the weather and directions
// adapters.
type geocoder struct {
	client  *http.Client
	baseURL string
}

const openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// geocode resolves name to its best-ranked coordinate. ok is false when
// the service knows no such place.
func (g *geocoder) geocode(ctx context.Context, name, lang string) (geoPoint, bool, error) {
	q := url.Values{}
	q.Set("name", strings.TrimSpace(name))
	q.Set("count", "1")
	q.Set("language", lang)
	q.Set("format", "json")

	var body struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := httpGetJSON(ctx, g.client, g.baseURL+"?"+q.Encode(), &body); err != nil {
		return geoPoint{}, false, err
	}
	if len(body.Results) == 0 {
		return geoPoint{}, false, nil
	}
	r := body.Results[0]
	return geoPoint{Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude}, true, nil
}
