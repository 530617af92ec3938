// Package store persists scraped offers. The spreadsheet is the record of
// truth; Postgres is an alternative backend with the same contract.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"go-jobsheet-automation/internal/config"
	"go-jobsheet-automation/internal/database"
	"go-jobsheet-automation/internal/scraper"
	"go-jobsheet-automation/internal/sheets"
)

const (
	// URLColumn is the 1-based spreadsheet column holding offer URLs.
	URLColumn = 5
	// FirstDataRow is where new rows go, right below the header.
	FirstDataRow = 2
)

// Header is the spreadsheet header row.
var Header = []string{"Employer", "Position", "Salary", "Requirements", "URL", "Status"}

// OfferStore reads the known offer URLs once per run and appends new
// offers. AppendOffers is called from one goroutine at a time.
type OfferStore interface {
	KnownURLs(ctx context.Context) ([]string, error)
	AppendOffers(ctx context.Context, site string, offers []scraper.JobOffer) error
	Close() error
}

// Rows lays offers out as spreadsheet rows. Status is left blank for the
// user to fill in.
func Rows(offers []scraper.JobOffer) [][]string {
	rows := make([][]string, len(offers))
	for i, o := range offers {
		rows[i] = []string{o.Employer, o.Position, o.Salary, o.Requirements, o.URL, ""}
	}
	return rows
}

// Worksheet is the part of sheets.Worksheet the store needs.
type Worksheet interface {
	ColumnValues(ctx context.Context, col int) ([]string, error)
	InsertRows(ctx context.Context, rows [][]string, at int) error
}

// SheetStore keeps offers in the first worksheet of a spreadsheet, newest
// on top.
type SheetStore struct {
	ws     Worksheet
	logger *slog.Logger
}

func NewSheetStore(ws Worksheet, logger *slog.Logger) *SheetStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetStore{ws: ws, logger: logger}
}

func (s *SheetStore) KnownURLs(ctx context.Context) ([]string, error) {
	return s.ws.ColumnValues(ctx, URLColumn)
}

func (s *SheetStore) AppendOffers(ctx context.Context, site string, offers []scraper.JobOffer) error {
	if len(offers) == 0 {
		return nil
	}
	if err := s.ws.InsertRows(ctx, Rows(offers), FirstDataRow); err != nil {
		return fmt.Errorf("append %s offers: %w", site, err)
	}
	s.logger.InfoContext(ctx, "💾 Offers saved to spreadsheet", "site", site, "count", len(offers))
	return nil
}

func (s *SheetStore) Close() error {
	return nil
}

// PostgresStore keeps offers in the job_offers table.
type PostgresStore struct {
	repo   *database.Repository
	logger *slog.Logger
}

func NewPostgresStore(repo *database.Repository, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{repo: repo, logger: logger}
}

func (s *PostgresStore) KnownURLs(ctx context.Context) ([]string, error) {
	return s.repo.KnownURLs(ctx)
}

func (s *PostgresStore) AppendOffers(ctx context.Context, site string, offers []scraper.JobOffer) error {
	n, err := s.repo.SaveOffers(ctx, site, offers)
	if err != nil {
		return fmt.Errorf("append %s offers: %w", site, err)
	}
	s.logger.InfoContext(ctx, "💾 Offers saved to database", "site", site, "count", n)
	return nil
}

func (s *PostgresStore) Close() error {
	s.repo.Close()
	return nil
}

// Open connects the backend named by cfg.Store.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (OfferStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return NewPostgresStore(repo, logger), nil
	case config.StoreSheets, "":
		client, err := sheets.NewClient(ctx, cfg.CredentialsPath)
		if err != nil {
			return nil, err
		}
		doc, err := client.OpenSheet(ctx, cfg.SpreadsheetName)
		if err != nil {
			return nil, err
		}
		ws, err := doc.Worksheet(ctx, 0)
		if err != nil {
			return nil, err
		}
		return NewSheetStore(ws, logger), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
