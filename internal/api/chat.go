package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medinaguide/medina/internal/assemble"
	"github.com/medinaguide/medina/internal/chat"
	"github.com/medinaguide/medina/internal/gate"
	"github.com/medinaguide/medina/internal/i18n"
	"github.com/medinaguide/medina/internal/intent"
	"github.com/medinaguide/medina/internal/llm"
	"github.com/medinaguide/medina/internal/lookup"
	"github.com/medinaguide/medina/internal/retrieval"
	"github.com/medinaguide/medina/internal/store"
)

// maxRequestBody bounds the decoded request size.
const maxRequestBody = 1 << 20 // 1MB

// Retriever is the fan-out retrieval surface. Satisfied by
// *retrieval.Gateway.
type Retriever interface {
	Retrieve(ctx context.Context, vec []float32, f store.Filters) retrieval.Result
}

// Responder generates the final answer. Satisfied by
// *chat.Orchestrator.
type Responder interface {
	Respond(ctx context.Context, lang, contextBlock string, turns []llm.Turn) (text string, degraded bool, err error)
}

// Adapter is one external lookup (weather, directions, web search).
type Adapter interface {
	Lookup(ctx context.Context, query, lang string) (lookup.Result, error)
}

// MessageLogger persists conversation turns. Satisfied by *store.Store.
type MessageLogger interface {
	LogMessage(ctx context.Context, chatID, role, content string) error
}

// chatHandler runs the full answer pipeline for POST /api/v1/chat.
type chatHandler struct {
	embedder   llm.Embedder
	retriever  Retriever
	responder  Responder
	weather    Adapter
	directions Adapter
	websearch  Adapter
	messages   MessageLogger // optional

	caps            assemble.Caps
	minSimilarity   float64
	strictDomain    bool
	maxMessageChars int
	embedTimeout    time.Duration

	logger *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFilters struct {
	CityID     *int64 `json:"cityId"`
	CategoryID *int64 `json:"categoryId"`
}

type chatRequest struct {
	ChatID        string        `json:"chat_id"`
	Language      string        `json:"language"`
	Messages      []chatMessage `json:"messages"`
	Filters       *chatFilters  `json:"filters"`
	AllowExternal bool          `json:"allowExternal"`
}

// sourceRef is one cited source in the response. Lat/Lng are present
// only for record kinds that carry coordinates (stadiums, places).
type sourceRef struct {
	Type       string   `json:"type"`
	ID         int64    `json:"id,omitempty"`
	Name       string   `json:"name"`
	URL        string   `json:"url,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	Similarity float64  `json:"similarity,omitempty"`
}

type chatResponse struct {
	OutputText string      `json:"output_text"`
	Sources    []sourceRef `json:"sources"`
}

// send handles POST /api/v1/chat.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}

	lang := i18n.Normalize(req.Language)

	// An empty or over-length last user turn is rejected before any
	// backend call.
	message := lastUserMessage(req.Messages)
	if message == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "a non-empty user message is required", h.logger)
		return
	}
	if len([]rune(message)) > h.maxMessageChars {
		writeError(w, http.StatusBadRequest, "message_too_long", "user message exceeds the maximum accepted length", h.logger)
		return
	}

	classified := intent.Classify(message)
	h.logger.Debug("message classified", "intent", classified.String(), "lang", lang)

	if classified.External() {
		if !req.AllowExternal {
			h.respond(w, r, req.ChatID, message, chatResponse{
				OutputText: i18n.T(lang, "refusal.domain"),
				Sources:    []sourceRef{},
			})
			return
		}
		if done := h.external(w, r, classified, req.ChatID, message, lang); done {
			return
		}
		// Weather with no geocodable place falls through to app data.
	}

	h.appData(w, r, req, message, lang)
}

// external dispatches to the adapter for the classified intent. Returns
// false when the caller should fall through to the app-data path.
func (h *chatHandler) external(w http.ResponseWriter, r *http.Request, classified intent.Intent, chatID, message, lang string) bool {
	var adapter Adapter
	switch classified {
	case intent.Weather:
		adapter = h.weather
	case intent.Directions:
		adapter = h.directions
	default:
		adapter = h.websearch
	}

	res, err := adapter.Lookup(r.Context(), message, lang)
	if err != nil {
		if errors.Is(err, lookup.ErrPlaceNotFound) {
			return false
		}
		h.logger.Warn("external lookup failed", "intent", classified.String(), "error", err)
		h.respond(w, r, chatID, message, chatResponse{
			OutputText: i18n.T(lang, "error.try_later"),
			Sources:    []sourceRef{},
		})
		return true
	}

	sources := make([]sourceRef, 0, len(res.Sources))
	for _, s := range res.Sources {
		sources = append(sources, sourceRef{Type: s.Type, Name: s.Name, URL: s.URL})
	}
	h.respond(w, r, chatID, message, chatResponse{OutputText: res.Text, Sources: sources})
	return true
}

// appData runs embed, retrieve, gate, assemble, generate.
func (h *chatHandler) appData(w http.ResponseWriter, r *http.Request, req chatRequest, message, lang string) {
	ctx := r.Context()

	embedCtx, cancel := context.WithTimeout(ctx, h.embedTimeout)
	vec, err := h.embedder.Embed(embedCtx, message)
	cancel()
	if err != nil {
		h.logger.Error("embedding query", "error", err)
		writeError(w, http.StatusInternalServerError, "embedding_failed", "could not process the question", h.logger)
		return
	}

	var filters store.Filters
	if req.Filters != nil {
		filters = store.Filters{CityID: req.Filters.CityID, CategoryID: req.Filters.CategoryID}
	}
	result := h.retriever.Retrieve(ctx, vec, filters)

	if gate.Decide(result.Similarities(), h.strictDomain, h.minSimilarity) == gate.Refuse {
		h.respond(w, r, req.ChatID, message, chatResponse{
			OutputText: i18n.T(lang, "refusal.domain"),
			Sources:    []sourceRef{},
		})
		return
	}

	block := assemble.Block(assemble.Input{
		Services: result.Services.Records,
		Places:   result.Places.Records,
		Stadiums: result.Stadiums.Records,
		News:     result.News.Records,
	}, lang, h.caps)

	turns := turnWindow(req.Messages, h.maxMessageChars)
	text, degraded, err := h.responder.Respond(ctx, lang, block, turns)
	if err != nil {
		h.logger.Error("generating answer", "error", err)
		writeError(w, http.StatusInternalServerError, "generation_failed", "could not generate an answer", h.logger)
		return
	}

	sources := []sourceRef{}
	if !degraded {
		sources = recordSources(result, lang)
	}
	h.respond(w, r, req.ChatID, message, chatResponse{OutputText: text, Sources: sources})
}

// respond writes the success envelope and logs both turns best-effort.
func (h *chatHandler) respond(w http.ResponseWriter, r *http.Request, chatID, userMessage string, resp chatResponse) {
	if h.messages != nil && chatID != "" {
		if err := h.messages.LogMessage(r.Context(), chatID, "user", userMessage); err != nil {
			h.logger.Warn("logging user message", "error", err)
		}
		if err := h.messages.LogMessage(r.Context(), chatID, "assistant", resp.OutputText); err != nil {
			h.logger.Warn("logging assistant message", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// lastUserMessage returns the trimmed content of the last user turn.
func lastUserMessage(messages []chatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

// turnWindow converts the request messages to generator turns, keeping
// the trailing window with per-turn clamping.
func turnWindow(messages []chatMessage, maxChars int) []llm.Turn {
	turns := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, llm.Turn{Role: m.Role, Text: m.Content})
	}
	return chat.Window(turns, chat.TurnWindow, maxChars)
}

func recordSources(result retrieval.Result, lang string) []sourceRef {
	var out []sourceRef
	add := func(records []store.Record) {
		for _, rec := range records {
			out = append(out, sourceRef{
				Type:       string(rec.Kind),
				ID:         rec.ID,
				Name:       assemble.DisplayName(rec, lang),
				Lat:        rec.Lat,
				Lng:        rec.Lng,
				Similarity: rec.Similarity,
			})
		}
	}
	add(result.Services.Records)
	add(result.Places.Records)
	add(result.Stadiums.Records)
	add(result.News.Records)
	if out == nil {
		return []sourceRef{}
	}
	return out
}
