// Package retrieval fans a query vector out to the four category
// searches and joins the results.
//
// The gateway completes only after all four calls settle. A failure in
// one category never fails the others: it is logged and recorded as a
// structured per-category outcome, so the caller can distinguish
// "no data" from "source down".
package retrieval

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medinaguide/medina/internal/store"
)

// Searcher is the ranked-retrieval surface of the datastore.
type Searcher interface {
	SearchServices(ctx context.Context, vec []float32, f store.Filters, limit int) ([]store.Record, error)
	SearchNews(ctx context.Context, vec []float32, f store.Filters, limit int) ([]store.Record, error)
	SearchStadiums(ctx context.Context, vec []float32, f store.Filters, limit int) ([]store.Record, error)
	SearchPlaces(ctx context.Context, vec []float32, f store.Filters, limit int) ([]store.Record, error)
}

// Status is the outcome of one category search.
type Status int

const (
	// StatusData means the search succeeded and returned records.
	StatusData Status = iota
	// StatusEmpty means the search succeeded with no records.
	StatusEmpty
	// StatusFailed means the search errored; the failure was logged and
	// the category is treated as empty.
	StatusFailed
)

// CategoryResult is the structured outcome for one category.
type CategoryResult struct {
	Records []store.Record
	Status  Status
}

// Result groups the four category outcomes.
type Result struct {
	Services CategoryResult
	News     CategoryResult
	Stadiums CategoryResult
	Places   CategoryResult
}

// Similarities flattens all retrieved similarity scores, in no
// particular order. Input for the domain gate.
func (r Result) Similarities() []float64 {
	var out []float64
	for _, c := range []CategoryResult{r.Services, r.News, r.Stadiums, r.Places} {
		for _, rec := range c.Records {
			out = append(out, rec.Similarity)
		}
	}
	return out
}

// Gateway issues the four category searches concurrently.
type Gateway struct {
	searcher Searcher
	limit    int
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates a Gateway. limit caps each category independently; timeout
// bounds each individual search call.
func New(searcher Searcher, limit int, timeout time.Duration, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{searcher: searcher, limit: limit, timeout: timeout, logger: logger}
}

// Retrieve runs the fan-out/fan-in join. It always returns a complete
// Result; per-category failures are reflected in the Status fields.
func (g *Gateway) Retrieve(ctx context.Context, vec []float32, f store.Filters) Result {
	var res Result

	search := func(name string, dst *CategoryResult,
		fn func(context.Context, []float32, store.Filters, int) ([]store.Record, error)) func() error {
		return func() error {
			callCtx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()

			records, err := fn(callCtx, vec, f, g.limit)
			switch {
			case err != nil:
				g.logger.Warn("category retrieval failed", "category", name, "error", err)
				*dst = CategoryResult{Status: StatusFailed}
			case len(records) == 0:
				*dst = CategoryResult{Status: StatusEmpty}
			default:
				*dst = CategoryResult{Records: records, Status: StatusData}
			}
			return nil
		}
	}

	var eg errgroup.Group
	eg.Go(search("services", &res.Services, g.searcher.SearchServices))
	eg.Go(search("news", &res.News, g.searcher.SearchNews))
	eg.Go(search("stadiums", &res.Stadiums, g.searcher.SearchStadiums))
	eg.Go(search("places", &res.Places, g.searcher.SearchPlaces))
	_ = eg.Wait() // closures never return an error; failures are recorded per category

	return res
}
