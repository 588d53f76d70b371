package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medinaguide/medina/internal/i18n"
	"github.com/medinaguide/medina/internal/log"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		lang   string
		origin string
		dest   string
		ok     bool
	}{
		{"english", "how do I get from Rabat to Casablanca?", i18n.LangEN, "Rabat", "Casablanca", true},
		{"french a", "itinéraire de Rabat à Fès", i18n.LangFR, "Rabat", "Fès", true},
		{"french vers", "de Tanger vers Marrakech", i18n.LangFR, "Tanger", "Marrakech", true},
		{"arabic", "من الرباط إلى الدار البيضاء", i18n.LangAR, "الرباط", "الدار البيضاء", true},
		{"no template", "directions please", i18n.LangEN, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin, dest, ok := parseRoute(tt.query, tt.lang)
			if ok != tt.ok || origin != tt.origin || dest != tt.dest {
				t.Errorf("parseRoute(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.query, origin, dest, ok, tt.origin, tt.dest, tt.ok)
			}
		})
	}
}

func TestDirectionsLookup_MissingKeyDegrades(t *testing.T) {
	d := NewDirections("", 0, log.NewNop())

	res, err := d.Lookup(context.Background(), "from Rabat to Casablanca", i18n.LangFR)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if want := i18n.T(i18n.LangFR, "directions.unavailable"); res.Text != want {
		t.Errorf("Lookup() = %q, want %q", res.Text, want)
	}
	if len(res.Sources) != 0 {
		t.Errorf("sources = %v, want empty", res.Sources)
	}
}

func TestDirectionsLookup_NoTemplateGivesUsageHint(t *testing.T) {
	d := NewDirections("key", 0, log.NewNop())

	res, err := d.Lookup(context.Background(), "how long is the tram ride", i18n.LangEN)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if want := i18n.T(i18n.LangEN, "directions.usage"); res.Text != want {
		t.Errorf("Lookup() = %q, want %q", res.Text, want)
	}
}

func TestDirectionsLookup_RoutesBetweenCities(t *testing.T) {
	geo := geocodeServer(t, map[string]string{
		"rabat":      `{"results":[{"name":"Rabat","latitude":34.02,"longitude":-6.83}]}`,
		"casablanca": `{"results":[{"name":"Casablanca","latitude":33.57,"longitude":-7.59}]}`,
	})
	defer geo.Close()

	route := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "key" {
			t.Errorf("api_key = %q, want key", r.URL.Query().Get("api_key"))
		}
		_, _ = w.Write([]byte(`{"features":[{"properties":{"summary":{"distance":87200,"duration":4380}}}]}`))
	}))
	defer route.Close()

	d := NewDirections("key", 0, log.NewNop())
	d.geo.baseURL = geo.URL
	d.routeURL = route.URL

	res, err := d.Lookup(context.Background(), "from Rabat to Casablanca", i18n.LangEN)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	for _, want := range []string{"Rabat", "Casablanca", "87.2", "73"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("Lookup() text = %q, missing %q", res.Text, want)
		}
	}
	if len(res.Sources) != 1 || res.Sources[0].Type != "directions" {
		t.Errorf("sources = %+v, want one directions source", res.Sources)
	}
}

func TestDirectionsLookup_UnknownEndpointGivesUsageHint(t *testing.T) {
	geo := geocodeServer(t, map[string]string{
		"rabat": `{"results":[{"name":"Rabat","latitude":34.02,"longitude":-6.83}]}`,
	})
	defer geo.Close()

	d := NewDirections("key", 0, log.NewNop())
	d.geo.baseURL = geo.URL

	res, err := d.Lookup(context.Background(), "from Rabat to Atlantis", i18n.LangEN)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if want := i18n.T(i18n.LangEN, "directions.usage"); res.Text != want {
		t.Errorf("Lookup() = %q, want %q", res.Text, want)
	}
}
