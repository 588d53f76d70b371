package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medinaguide/medina/internal/i18n"
)

// ErrPlaceNotFound means the query named no geocodable place. The
// caller falls through to the in-domain data path instead of showing an
// error.
var ErrPlaceNotFound = errors.New("no geocodable place in query")

const openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"

// Weather answers weather questions via Open-Meteo (geocode, then
// current conditions plus the same-day range). Keyless.
type Weather struct {
	geo         *geocoder
	client      *http.Client
	forecastURL string
	logger      *slog.Logger
}

// NewWeather creates the weather adapter.
func NewWeather(timeout time.Duration, logger *slog.Logger) *Weather {
	if logger == nil {
		logger = slog.Default()
	}
	client := defaultClient(timeout)
	return &Weather{
		geo:         &geocoder{client: client, baseURL: openMeteoGeocodingURL},
		client:      client,
		forecastURL: openMeteoForecastURL,
		logger:      logger,
	}
}

// Lookup geocodes the place named in query and reports current weather.
// Returns ErrPlaceNotFound when geocoding finds nothing.
func (w *Weather) Lookup(ctx context.Context, query, lang string) (Result, error) {
	place, ok, err := w.resolvePlace(ctx, query, lang)
	if err != nil {
		return Result{}, fmt.Errorf("weather geocoding: %w", err)
	}
	if !ok {
		return Result{}, ErrPlaceNotFound
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", place.Latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", place.Longitude))
	q.Set("current", "temperature_2m,weather_code,wind_speed_10m")
	q.Set("daily", "temperature_2m_min,temperature_2m_max")
	q.Set("forecast_days", "1")
	q.Set("timezone", "auto")

	var body struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
		Daily struct {
			TempMin []float64 `json:"temperature_2m_min"`
			TempMax []float64 `json:"temperature_2m_max"`
		} `json:"daily"`
	}
	if err := httpGetJSON(ctx, w.client, w.forecastURL+"?"+q.Encode(), &body); err != nil {
		return Result{}, fmt.Errorf("weather forecast: %w", err)
	}

	min, max := body.Current.Temperature, body.Current.Temperature
	if len(body.Daily.TempMin) > 0 {
		min = body.Daily.TempMin[0]
	}
	if len(body.Daily.TempMax) > 0 {
		max = body.Daily.TempMax[0]
	}

	text := i18n.Sprintf(lang, "weather.report",
		place.Name,
		i18n.T(lang, conditionID(body.Current.WeatherCode)),
		body.Current.Temperature, min, max,
		body.Current.WindSpeed)

	return Result{
		Text:    text,
		Sources: []Source{{Type: "weather", Name: "Open-Meteo", URL: "https://open-meteo.com"}},
	}, nil
}

// resolvePlace tries the text after a locative preposition first, then
// the whole query. "what's the weather in Rabat" geocodes "Rabat".
func (w *Weather) resolvePlace(ctx context.Context, query, lang string) (geoPoint, bool, error) {
	for _, candidate := range placeCandidates(query, lang) {
		place, ok, err := w.geo.geocode(ctx, candidate, lang)
		if err != nil {
			return geoPoint{}, false, err
		}
		if ok {
			return place, true, nil
		}
	}
	return geoPoint{}, false, nil
}

// locativeMarkers are the per-language prepositions preceding a place
// name in weather questions.
var locativeMarkers = map[string][]string{
	i18n.LangEN: {" in ", " at "},
	i18n.LangFR: {" à ", " a ", " en ", " dans "},
	i18n.LangAR: {" في ", " بـ"},
}

func placeCandidates(query, lang string) []string {
	query = strings.TrimRight(strings.TrimSpace(query), "?!.؟")
	var out []string
	// Geocoding is case-insensitive, so matching on the lowered text is
	// safe for the tail too.
	padded := strings.ToLower(" " + query + " ")
	for _, marker := range locativeMarkers[lang] {
		if i := strings.LastIndex(padded, marker); i >= 0 {
			tail := strings.TrimSpace(padded[i+len(marker):])
			if tail != "" {
				out = append(out, tail)
			}
		}
	}
	return append(out, query)
}

// conditionID maps a WMO weather code to the localized condition id.
func conditionID(code int) string {
	switch {
	case code <= 1:
		return "weather.cond.clear"
	case code <= 3:
		return "weather.cond.clouds"
	case code == 45 || code == 48:
		return "weather.cond.fog"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return "weather.cond.rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "weather.cond.snow"
	case code >= 95:
		return "weather.cond.storm"
	default:
		return "weather.cond.clouds"
	}
}
