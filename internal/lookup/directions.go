package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/medinaguide/medina/internal/i18n"
)

const openRouteServiceURL = "https://api.openrouteservice.org/v2/directions/driving-car"

// routePatterns parse "from X to Y" sentences per language. Fixed
// templates, no guessing: an unmatched query gets a usage hint.
var routePatterns = map[string]*regexp.Regexp{
	i18n.LangEN: regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+)$`),
	i18n.LangFR: regexp.MustCompile(`(?i)\bde\s+(.+?)\s+(?:à|a|vers)\s+(.+)$`),
	i18n.LangAR: regexp.MustCompile(`من\s+(.+?)\s+إلى\s+(.+)$`),
}

// Directions answers "from X to Y" questions: geocode both endpoints,
// then route between them via OpenRouteService. Requires an API key; a
// missing key degrades to a localized unavailability message.
type Directions struct {
	geo      *geocoder
	client   *http.Client
	apiKey   string
	routeURL string
	logger   *slog.Logger
}

// NewDirections creates the directions adapter. apiKey may be empty.
func NewDirections(apiKey string, timeout time.Duration, logger *slog.Logger) *Directions {
	if logger == nil {
		logger = slog.Default()
	}
	client := defaultClient(timeout)
	return &Directions{
		geo:      &geocoder{client: client, baseURL: openMeteoGeocodingURL},
		client:   client,
		apiKey:   apiKey,
		routeURL: openRouteServiceURL,
		logger:   logger,
	}
}

// Lookup parses the route template, geocodes both endpoints and fetches
// the driving route.
func (d *Directions) Lookup(ctx context.Context, query, lang string) (Result, error) {
	if d.apiKey == "" {
		return Result{Text: i18n.T(lang, "directions.unavailable")}, nil
	}

	origin, dest, ok := parseRoute(query, lang)
	if !ok {
		return Result{Text: i18n.T(lang, "directions.usage")}, nil
	}

	from, okFrom, err := d.geo.geocode(ctx, origin, lang)
	if err != nil {
		return Result{}, fmt.Errorf("geocoding origin: %w", err)
	}
	to, okTo, err := d.geo.geocode(ctx, dest, lang)
	if err != nil {
		return Result{}, fmt.Errorf("geocoding destination: %w", err)
	}
	if !okFrom || !okTo {
		return Result{Text: i18n.T(lang, "directions.usage")}, nil
	}

	q := url.Values{}
	q.Set("api_key", d.apiKey)
	q.Set("start", fmt.Sprintf("%.4f,%.4f", from.Longitude, from.Latitude))
	q.Set("end", fmt.Sprintf("%.4f,%.4f", to.Longitude, to.Latitude))

	var body struct {
		Features []struct {
			Properties struct {
				Summary struct {
					Distance float64 `json:"distance"` // meters
					Duration float64 `json:"duration"` // seconds
				} `json:"summary"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := httpGetJSON(ctx, d.client, d.routeURL+"?"+q.Encode(), &body); err != nil {
		return Result{}, fmt.Errorf("routing: %w", err)
	}
	if len(body.Features) == 0 {
		return Result{Text: i18n.T(lang, "directions.unavailable")}, nil
	}

	summary := body.Features[0].Properties.Summary
	text := i18n.Sprintf(lang, "directions.route",
		from.Name, to.Name,
		summary.Distance/1000,
		int(summary.Duration/60))

	return Result{
		Text:    text,
		Sources: []Source{{Type: "directions", Name: "OpenRouteService", URL: "https://openrouteservice.org"}},
	}, nil
}

// parseRoute extracts the origin and destination from a localized
// "from X to Y" sentence.
func parseRoute(query, lang string) (origin, dest string, ok bool) {
	re, found := routePatterns[lang]
	if !found {
		re = routePatterns[i18n.LangEN]
	}
	m := re.FindStringSubmatch(strings.TrimRight(strings.TrimSpace(query), "?!.؟"))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}
