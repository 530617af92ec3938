package pracuj

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go-jobsheet-automation/internal/browser"
	"go-jobsheet-automation/internal/scraper"
)

const (
	homeURL = "https://www.pracuj.pl/"

	searchInput    = `[data-test="input-kw"] [data-test="input-field"]`
	locationInput  = `[data-test="input-location"] [data-test="input-field"]`
	searchButton   = `[data-test="search-button"]`
	cookieButton   = `[data-test="button-submitCookie"]`
	offerLinks     = `[data-test="section-offers"] [data-test="link-offer"]`
	nextPageButton = `[data-test="top-pagination-next-button"]`
	maxPageNumber  = `[data-test="top-pagination-max-page-number"]`
	sortButton     = `[data-test="button-sort-type"]`
	sortNewest     = `[role="treeitem"]:has-text("Najnowsze")`

	employerName  = `[data-test="text-employerName"]`
	positionName  = `[data-test="text-positionName"]`
	earningAmount = `[data-test="text-earningAmount"]`
	requirements  = `[data-test="section-requirements"]`
)

// PracujScraper drives pracuj.pl, a paged feed.
type PracujScraper struct {
	opts   scraper.SiteOptions
	logger *slog.Logger
}

func NewPracujScraper(opts scraper.SiteOptions) *PracujScraper {
	opts = opts.WithDefaults()
	return &PracujScraper{opts: opts, logger: opts.Logger}
}

func (s *PracujScraper) Name() string {
	return "Pracuj"
}

func (s *PracujScraper) HomeURL() string {
	return homeURL
}

func (s *PracujScraper) AcceptCookies(_ context.Context, page browser.Page) error {
	return scraper.ClickIfVisible(page, cookieButton, s.opts.ElementTimeout)
}

func (s *PracujScraper) Search(_ context.Context, page browser.Page, params scraper.SearchParams) error {
	if err := page.Locator(searchInput).First().Type(params.Keywords, s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("type keywords: %w", err)
	}
	// Without a location the search still runs nationwide.
	if err := page.Locator(locationInput).First().Type(params.Location, s.opts.ElementTimeout); err != nil {
		s.logger.Warn("Location input not found, searching without location", "err", err)
	}
	if err := page.Locator(searchButton).First().Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("click search: %w", err)
	}
	return nil
}

func (s *PracujScraper) SortNewest(_ context.Context, page browser.Page) error {
	page.Wait(500 * time.Millisecond)
	if err := page.Locator(sortButton).First().Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("open sort dropdown: %w", err)
	}
	if err := page.Locator(sortNewest).First().Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("pick newest: %w", err)
	}
	page.Wait(browser.Jitter(s.opts.SettleDelay, 0.5))
	return nil
}

func (s *PracujScraper) Listing(page browser.Page) scraper.ListingSource {
	return &Listing{page: page, opts: s.opts}
}

func (s *PracujScraper) Extractor() scraper.OfferExtractor {
	return scraper.OfferExtractor{
		Employer:     scraper.TextOf(employerName, s.opts.ElementTimeout),
		Position:     scraper.TextOf(positionName, s.opts.ElementTimeout),
		Salary:       scraper.JoinedTextOf(earningAmount, ""),
		Requirements: scraper.TextOf(requirements, s.opts.ElementTimeout),
	}
}

// Listing is the paged result list of one pracuj.pl search.
type Listing struct {
	page browser.Page
	opts scraper.SiteOptions
}

func (l *Listing) CurrentCandidates(ctx context.Context) []string {
	links := l.page.Locator(offerLinks)
	if err := links.First().WaitVisible(l.opts.ListingTimeout); err != nil {
		l.opts.Logger.WarnContext(ctx, "No offers visible on page", "err", err)
		return nil
	}
	items, err := links.All()
	if err != nil {
		l.opts.Logger.WarnContext(ctx, "Could not list offers", "err", err)
		return nil
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		href, err := item.Attribute("href", l.opts.ElementTimeout)
		if err != nil || strings.TrimSpace(href) == "" {
			continue
		}
		urls = append(urls, scraper.ResolveURL(homeURL, href))
	}
	return urls
}

// PageCount reads the pagination indicator, defaulting to 1.
func (l *Listing) PageCount(ctx context.Context) int {
	text, err := l.page.Locator(maxPageNumber).First().InnerText(l.opts.ListingTimeout)
	if err != nil {
		l.opts.Logger.DebugContext(ctx, "No page count indicator, assuming one page", "err", err)
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		l.opts.Logger.WarnContext(ctx, "Unparsable page count, assuming one page", "text", text)
		return 1
	}
	return n
}

func (l *Listing) AdvancePage(_ context.Context) error {
	if err := l.page.Locator(nextPageButton).First().Click(l.opts.ElementTimeout); err != nil {
		return fmt.Errorf("%w: next page control: %v", scraper.ErrNavigation, err)
	}
	l.page.Wait(browser.Jitter(l.opts.SettleDelay, 0.5))
	return nil
}
