// Package runner ties one scraping run together: read the known URLs once,
// run every site concurrently, persist and announce what each one found.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go-jobsheet-automation/internal/scraper"
	"go-jobsheet-automation/internal/store"
)

// Collector is one site's workflow, normally a *scraper.Driver.
type Collector interface {
	Name() string
	CollectNewOffers(ctx context.Context, knownURLs []string) ([]scraper.JobOffer, error)
}

// Notifier announces new offers. Optional.
type Notifier interface {
	SendOffer(ctx context.Context, site string, offer scraper.JobOffer) error
	SendStatus(ctx context.Context, message string) error
}

type Options struct {
	Notifier Notifier
	// ResultsDir receives job-search-YYYY-MM-DD.json. Empty disables it.
	ResultsDir string
	// DryRun collects without writing to the store.
	DryRun bool
	Logger *slog.Logger
	// Now is overridable for tests.
	Now func() time.Time
}

type Runner struct {
	store      store.OfferStore
	collectors []Collector
	opts       Options
	logger     *slog.Logger

	writeMu sync.Mutex
}

func New(st store.OfferStore, collectors []Collector, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{store: st, collectors: collectors, opts: opts, logger: opts.Logger}
}

// SiteResult is the outcome of one site. Offers collected before a failure
// are kept and saved.
type SiteResult struct {
	Site    string
	Offers  []scraper.JobOffer
	Err     error
	SaveErr error
}

type Report struct {
	Results []SiteResult
}

// NewOffers counts offers across sites.
func (r *Report) NewOffers() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Offers)
	}
	return n
}

// Err joins every site and save failure.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		if res.SaveErr != nil {
			errs = append(errs, res.SaveErr)
		}
	}
	return errors.Join(errs...)
}

// Run performs one run. It fails only when the known URLs cannot be read;
// site failures are reported in the Report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	known, err := r.store.KnownURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read known offers: %w", err)
	}
	r.logger.InfoContext(ctx, "📚 Known offers loaded", "count", len(known))

	report := &Report{Results: make([]SiteResult, len(r.collectors))}
	var wg sync.WaitGroup
	for i, c := range r.collectors {
		i, c := i, c
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.Results[i] = r.runSite(ctx, c, known)
		}()
	}
	wg.Wait()

	r.saveResults(report)
	r.notifyStatus(ctx, report)
	r.logger.InfoContext(ctx, "🏁 Execution finished", "new_offers", report.NewOffers())
	return report, nil
}

func (r *Runner) runSite(ctx context.Context, c Collector, known []string) (res SiteResult) {
	res.Site = c.Name()
	logger := r.logger.With("site", res.Site)
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("%s: panic: %v", res.Site, p)
			logger.ErrorContext(ctx, "❌ Site run panicked", "panic", p)
		}
	}()

	logger.InfoContext(ctx, "▶️ Starting scraper")
	res.Offers, res.Err = c.CollectNewOffers(ctx, known)
	if res.Err != nil {
		logger.ErrorContext(ctx, "❌ Error running scraper", "err", res.Err, "partial_offers", len(res.Offers))
	} else {
		logger.InfoContext(ctx, "✅ Scraper finished", "new_offers", len(res.Offers))
	}
	if len(res.Offers) == 0 {
		return res
	}

	res.SaveErr = r.save(ctx, res.Site, res.Offers)
	if res.SaveErr != nil {
		logger.ErrorContext(ctx, "❌ Failed to save offers", "err", res.SaveErr)
		return res
	}
	r.notifyOffers(ctx, res.Site, res.Offers)
	return res
}

// save serializes store writes across sites.
func (r *Runner) save(ctx context.Context, site string, offers []scraper.JobOffer) error {
	if r.opts.DryRun {
		r.logger.InfoContext(ctx, "🧪 Dry run, not saving", "site", site, "count", len(offers))
		return nil
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.store.AppendOffers(ctx, site, offers)
}

func (r *Runner) notifyOffers(ctx context.Context, site string, offers []scraper.JobOffer) {
	if r.opts.Notifier == nil {
		return
	}
	for _, o := range offers {
		if err := r.opts.Notifier.SendOffer(ctx, site, o); err != nil {
			r.logger.WarnContext(ctx, "⚠️ Failed to send offer to Telegram", "site", site, "url", o.URL, "err", err)
		}
	}
}

func (r *Runner) notifyStatus(ctx context.Context, report *Report) {
	if r.opts.Notifier == nil {
		return
	}
	if err := r.opts.Notifier.SendStatus(ctx, StatusMessage(report)); err != nil {
		r.logger.WarnContext(ctx, "⚠️ Failed to send status to Telegram", "err", err)
	}
}

// StatusMessage summarizes a run in one line per site.
func StatusMessage(report *Report) string {
	lines := []string{fmt.Sprintf("Run finished: %d new offers", report.NewOffers())}
	for _, res := range report.Results {
		line := fmt.Sprintf("%s: %d new", res.Site, len(res.Offers))
		if res.Err != nil {
			line += fmt.Sprintf(" (failed: %v)", res.Err)
		}
		if res.SaveErr != nil {
			line += " (not saved)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

type savedOffer struct {
	Site string `json:"site"`
	scraper.JobOffer
}

func (r *Runner) saveResults(report *Report) {
	if r.opts.ResultsDir == "" {
		return
	}
	var offers []savedOffer
	for _, res := range report.Results {
		for _, o := range res.Offers {
			offers = append(offers, savedOffer{Site: res.Site, JobOffer: o})
		}
	}
	if len(offers) == 0 {
		r.logger.Info("ℹ️ No offers to save")
		return
	}

	if err := os.MkdirAll(r.opts.ResultsDir, 0755); err != nil {
		r.logger.Warn("⚠️ Failed to create results directory", "err", err)
		return
	}

	//gen filename: job-search-YYYY-MM-DD.json
	filename := fmt.Sprintf("job-search-%s.json", r.opts.Now().Format("2006-01-02"))
	filePath := filepath.Join(r.opts.ResultsDir, filename)

	data, err := json.MarshalIndent(offers, "", " ")
	if err != nil {
		r.logger.Warn("⚠️ Failed to marshal offers to JSON", "err", err)
		return
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		r.logger.Warn("⚠️ Failed to write results file", "err", err)
		return
	}
	r.logger.Info("📁 Results saved", "path", filePath)
}
