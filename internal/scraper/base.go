// Shared types for every job board: the offer record, URL identity,
// search validation and the step errors a site run can fail with.

package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go-jobsheet-automation/internal/dedup"
)

// NotFound replaces any field that could not be extracted.
const NotFound = "Not found"

// JobOffer is one scraped listing. URL is canonical and identifies the offer.
type JobOffer struct {
	Employer     string `json:"employer"`
	Position     string `json:"position"`
	Salary       string `json:"salary"`
	Requirements string `json:"requirements"`
	URL          string `json:"url"`
}

var (
	ErrInvalidParams = errors.New("invalid search parameters")
	ErrNavigation    = errors.New("navigation failed")
)

// StepError reports which workflow step aborted a site run.
type StepError struct {
	Site string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Site, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CanonicalURL is the offer identity key, see dedup.CanonicalURL.
func CanonicalURL(u string) string {
	return dedup.CanonicalURL(u)
}

// ResolveURL makes href absolute against base and canonicalizes it.
// Unparsable hrefs are only canonicalized.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	b, err := url.Parse(base)
	if err != nil {
		return CanonicalURL(href)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return CanonicalURL(href)
	}
	return CanonicalURL(b.ResolveReference(ref).String())
}

// SearchParams are the inputs of one board search.
type SearchParams struct {
	Keywords string
	Location string
}

// Validate trims both fields and rejects blank ones.
func (p SearchParams) Validate() (SearchParams, error) {
	out := SearchParams{
		Keywords: strings.TrimSpace(p.Keywords),
		Location: strings.TrimSpace(p.Location),
	}
	if out.Keywords == "" {
		return out, fmt.Errorf("%w: keywords must not be blank", ErrInvalidParams)
	}
	if out.Location == "" {
		return out, fmt.Errorf("%w: location must not be blank", ErrInvalidParams)
	}
	return out, nil
}
