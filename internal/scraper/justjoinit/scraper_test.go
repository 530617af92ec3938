package justjoinit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-jobsheet-automation/internal/browser"
	"go-jobsheet-automation/internal/browser/browsertest"
	"go-jobsheet-automation/internal/dedup"
	"go-jobsheet-automation/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScraper() *JustJoinItScraper {
	return NewJustJoinItScraper(scraper.SiteOptions{SettleDelay: time.Millisecond, ScrollStep: 400})
}

func cards(hrefs ...string) *browsertest.Element {
	links := make([]*browsertest.Element, len(hrefs))
	for i, href := range hrefs {
		links[i] = browsertest.Link(href)
	}
	return browsertest.List(links...)
}

func searchPage() (*browsertest.Page, map[string]*browsertest.Element) {
	els := map[string]*browsertest.Element{
		"box":      browsertest.Text(""),
		"location": browsertest.Text(""),
		"warsaw":   browsertest.Text("Warszawa"),
		"lodz":     browsertest.Text("Łódź, Poland"),
		"search":   browsertest.Text("Search"),
	}
	page := browsertest.NewPage().
		Set(searchInput, els["box"]).
		Set(locationInput, els["location"]).
		Set(locationOption, browsertest.List(els["warsaw"], els["lodz"])).
		Set(searchButton, els["search"])
	return page, els
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		location string
	}{
		{"Exact location", "Łódź"},
		{"Location without diacritics", "lodz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, els := searchPage()

			err := newTestScraper().Search(context.Background(), page, scraper.SearchParams{Keywords: "python test", Location: tt.location})

			require.NoError(t, err)
			assert.Equal(t, []string{"a python test"}, els["box"].Typed)
			assert.Equal(t, []string{tt.location}, els["location"].Typed)
			assert.Equal(t, 1, els["lodz"].ClickCount())
			assert.Equal(t, 0, els["warsaw"].ClickCount())
			assert.Equal(t, 1, els["search"].ClickCount())
		})
	}
}

func TestSearch_UnknownLocation(t *testing.T) {
	page, els := searchPage()

	err := newTestScraper().Search(context.Background(), page, scraper.SearchParams{Keywords: "qa", Location: "Gdańsk"})

	require.Error(t, err)
	assert.True(t, browser.IsMissing(err))
	assert.Equal(t, 0, els["search"].ClickCount())
}

func TestSortNewest(t *testing.T) {
	sortBtn := browsertest.Text("Sort")
	latest := browsertest.Text("Latest")
	page := browsertest.NewPage().Set(sortButton, sortBtn).Set(sortLatest, latest)

	require.NoError(t, newTestScraper().SortNewest(context.Background(), page))

	assert.Equal(t, 1, sortBtn.ClickCount())
	assert.Equal(t, 1, latest.ClickCount())
}

func TestListing_CurrentCandidates(t *testing.T) {
	page := browsertest.NewPage().Set(offerCards, cards(
		"/job-offer/acme-python-tester-lodz",
		" /job-offer/beta-qa-lodz?utm=feed ",
	))

	got := newTestScraper().Listing(page).CurrentCandidates(context.Background())

	assert.Equal(t, []string{
		"https://justjoin.it/job-offer/acme-python-tester-lodz",
		"https://justjoin.it/job-offer/beta-qa-lodz",
	}, got)
}

func TestScrollCollection(t *testing.T) {
	page := browsertest.NewPage().Set(offerCards, cards("/job-offer/o0", "/job-offer/known"))
	page.OnScroll = func(p *browsertest.Page, dy int) error {
		if p.Scrolls > 3 {
			return nil
		}
		hrefs := []string{"/job-offer/known"}
		for i := 1; i <= p.Scrolls; i++ {
			hrefs = append(hrefs, fmt.Sprintf("/job-offer/o%d", i))
		}
		p.Set(offerCards, cards(hrefs...))
		return nil
	}
	l := newTestScraper().Listing(page).(*Listing)
	known := dedup.NewKnownSet([]string{"https://justjoin.it/job-offer/known"})
	fetch := func(_ context.Context, url string) (scraper.JobOffer, error) {
		return scraper.JobOffer{URL: url}, nil
	}

	offers, err := scraper.NewScheduler(fetch, scraper.SchedulerOptions{}).CollectScrolled(context.Background(), l, known)

	require.NoError(t, err)
	urls := make([]string, len(offers))
	for i, o := range offers {
		urls[i] = o.URL
	}
	assert.Equal(t, []string{
		"https://justjoin.it/job-offer/o0",
		"https://justjoin.it/job-offer/o1",
		"https://justjoin.it/job-offer/o2",
		"https://justjoin.it/job-offer/o3",
	}, urls)
	assert.Equal(t, 4, page.Scrolls)
}

func TestExtractor(t *testing.T) {
	page := browsertest.NewPage().
		Set(positionTitle, browsertest.Text("Python Test Engineer")).
		Set(employerName, browsertest.List(browsertest.Text("Łódź"), browsertest.Text("ACME"))).
		Set(salaryLabel, &browsertest.Element{Children: map[string]*browsertest.Element{
			"..": {Children: map[string]*browsertest.Element{
				salaryAmount: browsertest.Text("18 000 - 24 000 PLN"),
			}},
		}}).
		Set(techStack, &browsertest.Element{Children: map[string]*browsertest.Element{
			"..": {Children: map[string]*browsertest.Element{
				techItem: browsertest.List(browsertest.Text("Python"), browsertest.Text("Pytest"), browsertest.Text("Selenium")),
			}},
		}})

	offer := newTestScraper().Extractor().Extract(context.Background(), page, "https://justjoin.it/job-offer/acme-python")

	assert.Equal(t, scraper.JobOffer{
		Employer:     "ACME",
		Position:     "Python Test Engineer",
		Salary:       "18 000 - 24 000 PLN",
		Requirements: "Python\nPytest\nSelenium",
		URL:          "https://justjoin.it/job-offer/acme-python",
	}, offer)
}

func TestExtractor_MissingSections(t *testing.T) {
	page := browsertest.NewPage().Set(positionTitle, browsertest.Text("QA"))

	offer := newTestScraper().Extractor().Extract(context.Background(), page, "https://justjoin.it/job-offer/qa")

	assert.Equal(t, "QA", offer.Position)
	assert.Equal(t, scraper.NotFound, offer.Employer)
	assert.Equal(t, scraper.NotFound, offer.Salary)
	assert.Equal(t, scraper.NotFound, offer.Requirements)
}
