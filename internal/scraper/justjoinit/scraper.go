package justjoinit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-jobsheet-automation/internal/browser"
	"go-jobsheet-automation/internal/scraper"
)

const (
	homeURL = "https://justjoin.it/"

	cookieButton   = `#cookiescript_accept`
	searchInput    = `button[aria-label="Search: Job title, company,"]`
	locationInput  = `role=combobox[name="Location"]`
	locationOption = `[role="option"]`
	searchButton   = `role=button[name="Search"s]`
	sortButton     = `[name="sort_filter_button"]`
	sortLatest     = `[role="menuitem"]:has-text("Latest")`
	offerCards     = `a.offer-card`

	positionTitle = `h1`
	employerName  = `p:has(svg)`
	salaryLabel   = `text=Salary`
	salaryAmount  = `div.MuiTypography-h4`
	techStack     = `text=Tech stack`
	techItem      = `h4`
)

// keywordPrefix is typed ahead of the keywords; the search box drops the
// first characters while its input is still mounting.
const keywordPrefix = "a "

// JustJoinItScraper drives justjoin.it, an infinite-scroll feed.
type JustJoinItScraper struct {
	opts   scraper.SiteOptions
	logger *slog.Logger
}

func NewJustJoinItScraper(opts scraper.SiteOptions) *JustJoinItScraper {
	opts = opts.WithDefaults()
	return &JustJoinItScraper{opts: opts, logger: opts.Logger}
}

func (s *JustJoinItScraper) Name() string {
	return "JustJoinIt"
}

func (s *JustJoinItScraper) HomeURL() string {
	return homeURL
}

func (s *JustJoinItScraper) AcceptCookies(_ context.Context, page browser.Page) error {
	return scraper.ClickIfVisible(page, cookieButton, s.opts.ElementTimeout)
}

func (s *JustJoinItScraper) Search(ctx context.Context, page browser.Page, params scraper.SearchParams) error {
	box := page.Locator(searchInput).First()
	if err := box.Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("open search box: %w", err)
	}
	page.Wait(100 * time.Millisecond)
	if err := box.Type(keywordPrefix+params.Keywords, s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("type keywords: %w", err)
	}

	location := page.Locator(locationInput).First()
	if err := location.Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("open location box: %w", err)
	}
	if err := location.Type(params.Location, s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("type location: %w", err)
	}
	if err := s.pickLocation(ctx, page, params.Location); err != nil {
		return err
	}

	if err := page.Locator(searchButton).First().Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("click search: %w", err)
	}
	page.Wait(browser.Jitter(s.opts.SettleDelay, 0.5))
	return nil
}

// pickLocation clicks the suggestion matching location, ignoring case and
// diacritics ("Lodz" picks "Łódź").
func (s *JustJoinItScraper) pickLocation(ctx context.Context, page browser.Page, location string) error {
	options := page.Locator(locationOption)
	if err := options.First().WaitVisible(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("location suggestions: %w", err)
	}
	items, err := options.All()
	if err != nil {
		return fmt.Errorf("location suggestions: %w", err)
	}

	want := scraper.FoldText(location)
	for _, item := range items {
		text, err := item.InnerText(s.opts.ElementTimeout)
		if err != nil {
			continue
		}
		if strings.Contains(scraper.FoldText(text), want) {
			s.logger.DebugContext(ctx, "Location picked", "option", scraper.CleanText(text))
			return item.Click(s.opts.ElementTimeout)
		}
	}
	return fmt.Errorf("%w: no location suggestion matches %q", browser.ErrNotFound, location)
}

func (s *JustJoinItScraper) SortNewest(_ context.Context, page browser.Page) error {
	if err := page.Locator(sortButton).First().Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("open sort menu: %w", err)
	}
	if err := page.Locator(sortLatest).First().Click(s.opts.ElementTimeout); err != nil {
		return fmt.Errorf("pick latest: %w", err)
	}
	page.Wait(2 * time.Second)
	return nil
}

func (s *JustJoinItScraper) Listing(page browser.Page) scraper.ListingSource {
	return &Listing{page: page, opts: s.opts}
}

func (s *JustJoinItScraper) Extractor() scraper.OfferExtractor {
	t := s.opts.ElementTimeout
	return scraper.OfferExtractor{
		Employer: func(_ context.Context, page browser.Page) (string, error) {
			// The first icon paragraph is the location, the second the company.
			return page.Locator(employerName).Nth(1).InnerText(t)
		},
		Position: scraper.TextOf(positionTitle, t),
		Salary: func(_ context.Context, page browser.Page) (string, error) {
			return page.Locator(salaryLabel).First().Locator("..").Locator(salaryAmount).First().InnerText(t)
		},
		Requirements: func(_ context.Context, page browser.Page) (string, error) {
			texts, err := page.Locator(techStack).First().Locator("..").Locator(techItem).AllInnerTexts()
			if err != nil {
				return "", err
			}
			if len(texts) == 0 {
				return "", fmt.Errorf("%w: tech stack", browser.ErrNotFound)
			}
			return strings.Join(texts, "\n"), nil
		},
	}
}

// Listing is the infinite-scroll result list of one justjoin.it search.
type Listing struct {
	page browser.Page
	opts scraper.SiteOptions
}

func (l *Listing) CurrentCandidates(ctx context.Context) []string {
	cards := l.page.Locator(offerCards)
	if err := cards.First().WaitVisible(l.opts.ListingTimeout); err != nil {
		l.opts.Logger.WarnContext(ctx, "No offer cards visible", "err", err)
		return nil
	}
	items, err := cards.All()
	if err != nil {
		l.opts.Logger.WarnContext(ctx, "Could not list offer cards", "err", err)
		return nil
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		href, err := item.Attribute("href", l.opts.ElementTimeout)
		if err != nil || strings.TrimSpace(href) == "" {
			continue
		}
		urls = append(urls, scraper.ResolveURL(homeURL, strings.TrimSpace(href)))
	}
	return urls
}

func (l *Listing) AdvanceScroll(_ context.Context) error {
	if err := l.page.ScrollBy(l.opts.ScrollStep); err != nil {
		return err
	}
	l.page.Wait(l.opts.SettleDelay)
	return nil
}
