package database

import (
	"context"
	"fmt"
	"time"

	"go-jobsheet-automation/internal/scraper"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_offers (
	url          TEXT PRIMARY KEY,
	site         TEXT NOT NULL,
	employer     TEXT NOT NULL,
	position     TEXT NOT NULL,
	salary       TEXT NOT NULL,
	requirements TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Poolers in transaction mode (Supabase, PgBouncer) cannot keep
	// prepared statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Migrate creates the job_offers table when it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create job_offers: %w", err)
	}
	return nil
}

// KnownURLs returns every stored offer URL.
func (r *Repository) KnownURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT url FROM job_offers")
	if err != nil {
		return nil, fmt.Errorf("failed to query known urls: %w", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read known urls: %w", err)
	}
	return urls, nil
}

// SaveOffers inserts offers in one batch and skips URLs already stored.
// It returns how many rows were actually inserted.
func (r *Repository) SaveOffers(ctx context.Context, site string, offers []scraper.JobOffer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO job_offers (url, site, employer, position, salary, requirements)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url) DO NOTHING`

	batch := &pgx.Batch{}
	for _, o := range offers {
		batch.Queue(query, o.URL, site, o.Employer, o.Position, o.Salary, o.Requirements)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range offers {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to save offer: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
