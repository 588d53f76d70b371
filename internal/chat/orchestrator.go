// Package chat builds the model-facing conversation and orchestrates
// generation with a bounded quota-fallback policy.
//
// Quota policy (chosen deliberately; the alternative of surfacing a 429
// was rejected): when the primary backend reports quota exhaustion the
// orchestrator waits the backend-suggested delay (or the configured
// default) and retries exactly once on the fallback backend. If that
// also rate-limits, the request still succeeds at the transport level
// with a localized "try again later" message and no sources. The HTTP
// 429 status is reserved for the caller-IP daily cap so clients can tell
// the two conditions apart.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/medinaguide/medina/internal/i18n"
	"github.com/medinaguide/medina/internal/llm"
)

// TurnWindow is the number of trailing conversation turns forwarded to
// the model verbatim.
const TurnWindow = 2

// Config contains the orchestrator dependencies.
type Config struct {
	Primary  llm.Generator
	Fallback llm.Generator

	// Limiter paces generation calls proactively. Optional.
	Limiter *rate.Limiter

	// QuotaRetryDelay is used when the backend suggests no delay.
	QuotaRetryDelay time.Duration

	// GenerateTimeout bounds each generation attempt.
	GenerateTimeout time.Duration

	Logger *slog.Logger
}

// Orchestrator issues generation calls against the primary backend with
// a single fallback attempt on quota exhaustion.
type Orchestrator struct {
	primary  llm.Generator
	fallback llm.Generator
	limiter  *rate.Limiter
	delay    time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Primary == nil {
		return nil, fmt.Errorf("primary generator is required")
	}
	if cfg.Fallback == nil {
		return nil, fmt.Errorf("fallback generator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.QuotaRetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	timeout := cfg.GenerateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
		limiter:  cfg.Limiter,
		delay:    delay,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Respond generates the answer for the assembled context and turn
// window. degraded is true when both backends rate-limited and the text
// is the localized apology; the caller should then drop sources.
func (o *Orchestrator) Respond(ctx context.Context, lang, contextBlock string, turns []llm.Turn) (text string, degraded bool, err error) {
	req := llm.GenerateRequest{
		System:  systemPrompt(lang),
		Context: "Context:\n" + contextBlock,
		Turns:   turns,
	}

	attempt := 0
	var out string
	err = retry.Do(
		func() error {
			backend := o.primary
			if attempt > 0 {
				backend = o.fallback
			}
			attempt++

			if o.limiter != nil {
				if err := o.limiter.Wait(ctx); err != nil {
					return retry.Unrecoverable(fmt.Errorf("rate limit wait: %w", err))
				}
			}

			callCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			resp, genErr := backend.Generate(callCtx, req)
			if genErr != nil {
				o.logger.Warn("generation attempt failed",
					"backend", backend.Name(), "attempt", attempt, "error", genErr)
				return genErr
			}
			out = resp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.RetryIf(llm.IsQuota),
		retry.LastErrorOnly(true),
		retry.DelayType(func(_ uint, lastErr error, _ *retry.Config) time.Duration {
			return llm.SuggestedDelay(lastErr, o.delay)
		}),
	)

	if err != nil {
		if llm.IsQuota(err) {
			o.logger.Warn("both generation backends rate limited, degrading", "lang", lang)
			return i18n.T(lang, "error.try_later"), true, nil
		}
		return "", false, fmt.Errorf("generation failed: %w", err)
	}

	if strings.TrimSpace(out) == "" {
		return i18n.T(lang, "error.empty_response"), false, nil
	}
	return out, false, nil
}

// Window returns the last k turns, each clamped to maxChars runes.
func Window(turns []llm.Turn, k, maxChars int) []llm.Turn {
	if len(turns) > k {
		turns = turns[len(turns)-k:]
	}
	out := make([]llm.Turn, len(turns))
	for i, t := range turns {
		runes := []rune(t.Text)
		if len(runes) > maxChars {
			t.Text = string(runes[:maxChars])
		}
		out[i] = t
	}
	return out
}

// languageNames gives the model an explicit target language.
var languageNames = map[string]string{
	i18n.LangEN: "English",
	i18n.LangFR: "French",
	i18n.LangAR: "Arabic",
}

func systemPrompt(lang string) string {
	name, ok := languageNames[lang]
	if !ok {
		name = "English"
	}
	return fmt.Sprintf("You are Medina, a concise city-guide assistant for Moroccan cities. "+
		"Answer in %s. Answer ONLY from the information in the provided context. "+
		"If the context does not contain the answer, say that you do not have that information. "+
		"Never invent names, addresses, phone numbers or dates.", name)
}
