// Package store provides the PostgreSQL + pgvector datastore: ranked
// similarity search over the four domain tables, the embedding cache,
// the message log and the daily request counter.
//
// Store is safe for concurrent use by multiple goroutines.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// Querier is the common interface satisfied by *pgxpool.Pool and pgx.Tx.
// Defined by the consumer so tests can substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps the database for all persistence concerns of the pipeline.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// New creates a Store.
func New(db Querier, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}, nil
}

const searchServicesSQL = `SELECT s.id, s.name_en, s.name_fr, s.name_ar,
	COALESCE(s.address, ''), COALESCE(s.phone, ''), COALESCE(c.name_en, ''),
	1 - (s.embedding <=> $1) AS similarity
FROM services s
LEFT JOIN categories c ON c.id = s.category_id
WHERE ($2::bigint IS NULL OR s.city_id = $2)
  AND ($3::bigint IS NULL OR s.category_id = $3)
ORDER BY s.embedding <=> $1
LIMIT $4`

// SearchServices returns the top services by embedding similarity,
// optionally narrowed by city and category.
func (s *Store) SearchServices(ctx context.Context, vec []float32, f Filters, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx, searchServicesSQL, pgvector.NewVector(vec), f.CityID, f.CategoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching services: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Kind: KindService}
		if err := rows.Scan(&r.ID, &r.NameEN, &r.NameFR, &r.NameAR,
			&r.Address, &r.Phone, &r.Category, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning service row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading service rows: %w", err)
	}
	return out, nil
}

const searchNewsSQL = `SELECT id, name_en, name_fr, name_ar, published_at,
	1 - (embedding <=> $1) AS similarity
FROM news
ORDER BY embedding <=> $1
LIMIT $2`

// SearchNews returns the top news items by embedding similarity.
func (s *Store) SearchNews(ctx context.Context, vec []float32, _ Filters, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx, searchNewsSQL, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, fmt.Errorf("searching news: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Kind: KindNews}
		if err := rows.Scan(&r.ID, &r.NameEN, &r.NameFR, &r.NameAR,
			&r.PublishedAt, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning news row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading news rows: %w", err)
	}
	return out, nil
}

const searchStadiumsSQL = `SELECT st.id, st.name_en, st.name_fr, st.name_ar,
	COALESCE(ci.name_en, ''), COALESCE(st.capacity, 0), st.lat, st.lng,
	1 - (st.embedding <=> $1) AS similarity
FROM stadiums st
LEFT JOIN cities ci ON ci.id = st.city_id
WHERE ($2::bigint IS NULL OR st.city_id = $2)
ORDER BY st.embedding <=> $1
LIMIT $3`

// SearchStadiums returns the top stadiums by embedding similarity,
// optionally narrowed by city.
func (s *Store) SearchStadiums(ctx context.Context, vec []float32, f Filters, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx, searchStadiumsSQL, pgvector.NewVector(vec), f.CityID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching stadiums: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Kind: KindStadium}
		if err := rows.Scan(&r.ID, &r.NameEN, &r.NameFR, &r.NameAR,
			&r.City, &r.Capacity, &r.Lat, &r.Lng, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning stadium row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stadium rows: %w", err)
	}
	return out, nil
}

const searchPlacesSQL = `SELECT p.id, p.name_en, p.name_fr, p.name_ar,
	COALESCE(ci.name_en, ''), p.lat, p.lng,
	1 - (p.embedding <=> $1) AS similarity
FROM places p
LEFT JOIN cities ci ON ci.id = p.city_id
WHERE ($2::bigint IS NULL OR p.city_id = $2)
ORDER BY p.embedding <=> $1
LIMIT $3`

// SearchPlaces returns the top tourist places by embedding similarity,
// optionally narrowed by city.
func (s *Store) SearchPlaces(ctx context.Context, vec []float32, f Filters, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx, searchPlacesSQL, pgvector.NewVector(vec), f.CityID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching places: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Kind: KindPlace}
		if err := rows.Scan(&r.ID, &r.NameEN, &r.NameFR, &r.NameAR,
			&r.City, &r.Lat, &r.Lng, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning place row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading place rows: %w", err)
	}
	return out, nil
}

// GetEmbedding looks up a cached embedding by content hash.
// The second return value reports whether the hash was present.
func (s *Store) GetEmbedding(ctx context.Context, contentHash string) ([]float32, bool, error) {
	var vec pgvector.Vector
	err := s.db.QueryRow(ctx,
		`SELECT embedding FROM embedding_cache WHERE content_hash = $1`,
		contentHash).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading embedding cache: %w", err)
	}
	return vec.Slice(), true, nil
}

// PutEmbedding stores an embedding under its content hash. Concurrent
// writers racing on the same hash are harmless: the first insert wins.
func (s *Store) PutEmbedding(ctx context.Context, contentHash string, vec []float32) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO embedding_cache (content_hash, embedding)
		 VALUES ($1, $2)
		 ON CONFLICT (content_hash) DO NOTHING`,
		contentHash, pgvector.NewVector(vec))
	if err != nil {
		return fmt.Errorf("writing embedding cache: %w", err)
	}
	return nil
}

// LogMessage appends one conversation turn to the message log.
func (s *Store) LogMessage(ctx context.Context, chatID, role, content string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO messages (chat_id, role, content) VALUES ($1, $2, $3)`,
		chatID, role, content)
	if err != nil {
		return fmt.Errorf("logging message: %w", err)
	}
	return nil
}

// IncrementRequestCount atomically increments and returns the request
// counter for (day, ip). The increment-then-read happens in a single
// statement at the datastore, so no in-process lock is needed.
func (s *Store) IncrementRequestCount(ctx context.Context, day time.Time, ip string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO request_log (day, ip, count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (day, ip) DO UPDATE SET count = request_log.count + 1
		 RETURNING count`,
		day.Format("2006-01-02"), ip).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("incrementing request count: %w", err)
	}
	return count, nil
}
