package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go-jobsheet-automation/internal/browser"
	"go-jobsheet-automation/internal/dedup"
)

// Site is the board-specific half of a driver: where to go, which buttons
// to press and how to read the results.
type Site interface {
	Name() string
	HomeURL() string
	AcceptCookies(ctx context.Context, page browser.Page) error
	Search(ctx context.Context, page browser.Page, params SearchParams) error
	SortNewest(ctx context.Context, page browser.Page) error
	// Listing returns a PagedListing or a ScrollListing bound to page.
	Listing(page browser.Page) ListingSource
	Extractor() OfferExtractor
}

// Driver is the per-site workflow: navigate, accept cookies, search, sort
// newest first and collect the offers not yet known.
type Driver struct {
	site        Site
	session     browser.Session
	params      SearchParams
	sched       SchedulerOptions
	screenshots *browser.ScreenshotDebugger
	logger      *slog.Logger

	// cookiesAccepted is set once a banner was dismissed in the session;
	// offer pages then skip the banner wait.
	cookiesAccepted atomic.Bool
}

type DriverOptions struct {
	Params      SearchParams
	Scheduler   SchedulerOptions
	Screenshots *browser.ScreenshotDebugger
	Logger      *slog.Logger
}

func NewDriver(site Site, session browser.Session, opts DriverOptions) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("site", site.Name())
	sched := opts.Scheduler
	sched.Logger = logger
	return &Driver{
		site:        site,
		session:     session,
		params:      opts.Params,
		sched:       sched,
		screenshots: opts.Screenshots,
		logger:      logger,
	}
}

func (d *Driver) Name() string {
	return d.site.Name()
}

// CollectNewOffers runs the whole workflow once. Offers whose canonical URL
// is in knownURLs are never fetched.
func (d *Driver) CollectNewOffers(ctx context.Context, knownURLs []string) ([]JobOffer, error) {
	params, err := d.params.Validate()
	if err != nil {
		return nil, d.stepError("validate", err)
	}
	known := dedup.NewKnownSet(knownURLs)

	page, err := d.session.NewPage(ctx)
	if err != nil {
		return nil, d.stepError("open page", err)
	}
	defer page.Close()

	d.logger.InfoContext(ctx, "🏠 Navigating", "url", d.site.HomeURL())
	if err := page.Goto(ctx, d.site.HomeURL()); err != nil {
		return nil, d.fail(page, "navigate", err)
	}

	if err := d.site.AcceptCookies(ctx, page); err != nil {
		d.logger.WarnContext(ctx, "🍪 Cookie banner not accepted, assuming absent", "err", err)
	} else {
		d.cookiesAccepted.Store(true)
	}

	d.logger.InfoContext(ctx, "🔍 Searching", "keywords", params.Keywords, "location", params.Location)
	if err := d.site.Search(ctx, page, params); err != nil {
		return nil, d.fail(page, "search", err)
	}
	if err := d.site.SortNewest(ctx, page); err != nil {
		return nil, d.fail(page, "sort", err)
	}

	sched := NewScheduler(d.fetchOffer, d.sched)
	var offers []JobOffer
	switch listing := d.site.Listing(page).(type) {
	case PagedListing:
		offers, err = sched.CollectPaged(ctx, listing, known)
	case ScrollListing:
		offers, err = sched.CollectScrolled(ctx, listing, known)
	default:
		err = fmt.Errorf("listing %T can neither page nor scroll", listing)
	}
	if err != nil {
		return offers, d.fail(page, "collect", err)
	}

	d.logger.InfoContext(ctx, "✅ Collection finished", "new_offers", len(offers), "known", known.Len())
	return offers, nil
}

// fetchOffer owns one page for one offer and always closes it.
func (d *Driver) fetchOffer(ctx context.Context, url string) (JobOffer, error) {
	page, err := d.session.NewPage(ctx)
	if err != nil {
		return JobOffer{}, fmt.Errorf("open offer page: %w", err)
	}
	defer page.Close()

	if err := page.Goto(ctx, url); err != nil {
		return JobOffer{}, fmt.Errorf("load offer %s: %w", url, err)
	}
	if !d.cookiesAccepted.Load() {
		if err := d.site.AcceptCookies(ctx, page); err != nil {
			d.logger.DebugContext(ctx, "No cookie banner on offer page", "url", url)
		} else {
			d.cookiesAccepted.Store(true)
		}
	}

	extractor := d.site.Extractor()
	extractor.Logger = d.logger
	return extractor.Extract(ctx, page, url), nil
}

func (d *Driver) fail(page browser.Page, step string, err error) error {
	name := strings.ToLower(d.site.Name()) + "-" + strings.ReplaceAll(step, " ", "-")
	_ = d.screenshots.CaptureAndLog(page, name, fmt.Sprintf("%s: %s step failed", d.site.Name(), step))
	return d.stepError(step, err)
}

func (d *Driver) stepError(step string, err error) error {
	var se *StepError
	if errors.As(err, &se) {
		return err
	}
	return &StepError{Site: d.site.Name(), Step: step, Err: err}
}

// ClickIfVisible clicks selector when it shows up within timeout. It is the
// cookie-banner idiom: absence is reported as an error the caller may ignore.
func ClickIfVisible(page browser.Page, selector string, timeout time.Duration) error {
	el := page.Locator(selector).First()
	if err := el.WaitVisible(timeout); err != nil {
		return err
	}
	return el.Click(timeout)
}
