// Package app wires the configured components into a running HTTP
// service: config, pool, migrations, Gemini client, store, retrieval,
// orchestrator, lookup adapters and the API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/medinaguide/medina/db"
	"github.com/medinaguide/medina/internal/api"
	"github.com/medinaguide/medina/internal/assemble"
	"github.com/medinaguide/medina/internal/chat"
	"github.com/medinaguide/medina/internal/config"
	"github.com/medinaguide/medina/internal/llm"
	"github.com/medinaguide/medina/internal/lookup"
	"github.com/medinaguide/medina/internal/retrieval"
	"github.com/medinaguide/medina/internal/store"
)

// generationBurst bounds how many generation calls may start at once
// before the pacing limiter kicks in.
const generationBurst = 4

// App holds the wired application.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Server *api.Server
}

// Setup builds the application. Migrations run before the pool is
// handed to any component. Call Close to release resources.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	a.Pool = pool

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	st, err := store.New(pool, logger)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	embedder, err := llm.NewCachedEmbedder(client.Embedder(cfg.EmbedderModel), st, logger)
	if err != nil {
		return nil, fmt.Errorf("creating cached embedder: %w", err)
	}

	gateway := retrieval.New(st, cfg.ResultsPerCategory, cfg.RetrievalTimeout, logger)

	orchestrator, err := chat.New(chat.Config{
		Primary:         client.Generator(cfg.ChatModel),
		Fallback:        client.Generator(cfg.FallbackModel),
		Limiter:         rate.NewLimiter(rate.Every(time.Second), generationBurst),
		QuotaRetryDelay: cfg.QuotaRetryDelay,
		GenerateTimeout: cfg.GenerateTimeout,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}

	server, err := api.NewServer(api.ServerConfig{
		Logger:            logger,
		Embedder:          embedder,
		Retriever:         gateway,
		Responder:         orchestrator,
		Counter:           st,
		Messages:          st,
		Weather:           lookup.NewWeather(cfg.LookupTimeout, logger),
		Directions:        lookup.NewDirections(cfg.RoutingAPIKey, cfg.LookupTimeout, logger),
		WebSearch:         lookup.NewWebSearch(cfg.SearchAPIKey, cfg.LookupTimeout, logger),
		Pool:              pool,
		APIToken:          cfg.APIToken,
		DailyRequestLimit: cfg.DailyRequestLimit,
		MaxMessageChars:   cfg.MaxMessageChars,
		MinSimilarity:     cfg.MinSimilarity,
		StrictDomain:      cfg.StrictDomain,
		ContextCaps:       assemble.Caps{Line: cfg.ContextLineChars, Total: cfg.MaxContextChars},
		EmbedTimeout:      cfg.EmbedTimeout,
		CORSOrigins:       cfg.CORSOrigins,
		TrustProxy:        cfg.TrustProxy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	a.Server = server

	return a, nil
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// Close releases held resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
