package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medinaguide/medina/internal/i18n"
	"github.com/medinaguide/medina/internal/log"
)

func TestWebSearchLookup_MissingKeyDegrades(t *testing.T) {
	s := NewWebSearch("", 0, log.NewNop())

	res, err := s.Lookup(context.Background(), "latest tram prices", i18n.LangAR)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if want := i18n.T(i18n.LangAR, "search.unavailable"); res.Text != want {
		t.Errorf("Lookup() = %q, want %q", res.Text, want)
	}
	if len(res.Sources) != 0 {
		t.Errorf("sources = %v, want empty", res.Sources)
	}
}

func TestWebSearchLookup_FlattensTopHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "key" {
			t.Errorf("X-API-KEY = %q, want key", r.Header.Get("X-API-KEY"))
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req["q"] != "tram ticket price rabat" {
			t.Errorf("q = %q", req["q"])
		}
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Rabat tram fares","link":"https://example.com/a","snippet":"A single ticket costs 6 MAD."},
			{"title":"Tramway Rabat-Salé","link":"https://example.com/b","snippet":"Official fares page."},
			{"title":"Third","link":"https://example.com/c","snippet":"s3"},
			{"title":"Fourth","link":"https://example.com/d","snippet":"must be dropped"}
		]}`))
	}))
	defer srv.Close()

	s := NewWebSearch("key", 0, log.NewNop())
	s.searchURL = srv.URL

	res, err := s.Lookup(context.Background(), "tram ticket price rabat", i18n.LangEN)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !strings.Contains(res.Text, "6 MAD") {
		t.Errorf("text = %q, missing snippet", res.Text)
	}
	if strings.Contains(res.Text, "Fourth") {
		t.Errorf("text = %q, must cap at %d hits", res.Text, maxSearchHits)
	}
	if len(res.Sources) != maxSearchHits {
		t.Fatalf("len(sources) = %d, want %d", len(res.Sources), maxSearchHits)
	}
	if res.Sources[0].URL != "https://example.com/a" {
		t.Errorf("first source = %+v", res.Sources[0])
	}
}

func TestWebSearchLookup_NoHitsDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"organic":[]}`))
	}))
	defer srv.Close()

	s := NewWebSearch("key", 0, log.NewNop())
	s.searchURL = srv.URL

	res, err := s.Lookup(context.Background(), "anything", i18n.LangFR)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if want := i18n.T(i18n.LangFR, "search.unavailable"); res.Text != want {
		t.Errorf("Lookup() = %q, want %q", res.Text, want)
	}
}
