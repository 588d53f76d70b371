package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medinaguide/medina/internal/i18n"
)

const serperSearchURL = "https://google.serper.dev/search"

// maxSearchHits caps how many results make it into the answer text.
const maxSearchHits = 3

// WebSearch answers freshness-dependent questions (prices, reviews,
// latest anything) through the Serper search API. Requires an API key;
// a missing key degrades to a localized unavailability message.
type WebSearch struct {
	client    *http.Client
	apiKey    string
	searchURL string
	logger    *slog.Logger
}

// NewWebSearch creates the web search adapter. apiKey may be empty.
func NewWebSearch(apiKey string, timeout time.Duration, logger *slog.Logger) *WebSearch {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSearch{
		client:    defaultClient(timeout),
		apiKey:    apiKey,
		searchURL: serperSearchURL,
		logger:    logger,
	}
}

// Lookup runs the search and flattens the top organic hits into a short
// text with one source per hit.
func (s *WebSearch) Lookup(ctx context.Context, query, lang string) (Result, error) {
	if s.apiKey == "" {
		return Result{Text: i18n.T(lang, "search.unavailable")}, nil
	}

	payload, err := json.Marshal(map[string]string{"q": query, "hl": lang})
	if err != nil {
		return Result{}, fmt.Errorf("encoding search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.searchURL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("calling search: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var body struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("decoding search response: %w", err)
	}
	if len(body.Organic) == 0 {
		return Result{Text: i18n.T(lang, "search.unavailable")}, nil
	}

	var (
		lines   []string
		sources []Source
	)
	for i, hit := range body.Organic {
		if i == maxSearchHits {
			break
		}
		line := hit.Title
		if hit.Snippet != "" {
			line += ": " + hit.Snippet
		}
		lines = append(lines, "- "+line)
		sources = append(sources, Source{Type: "web", Name: hit.Title, URL: hit.Link})
	}

	return Result{Text: strings.Join(lines, "\n"), Sources: sources}, nil
}
