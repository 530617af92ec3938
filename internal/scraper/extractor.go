package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-jobsheet-automation/internal/browser"
)

// FieldFunc reads one field from a loaded offer page.
type FieldFunc func(ctx context.Context, page browser.Page) (string, error)

// ExtractField runs fn and never fails: a missing element yields NotFound
// with a warning, anything else (including a panic) yields NotFound with an
// error log.
func ExtractField(ctx context.Context, logger *slog.Logger, name string, page browser.Page, fn FieldFunc) (value string) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, fmt.Sprintf("Unexpected error getting %s field", name),
				"field", name, "url", page.URL(), "err", fmt.Sprint(r))
			value = NotFound
		}
	}()

	if fn == nil {
		logger.ErrorContext(ctx, fmt.Sprintf("No extractor for %s field", name), "field", name)
		return NotFound
	}

	v, err := fn(ctx, page)
	switch {
	case err == nil:
		v = CleanText(v)
		logger.DebugContext(ctx, fmt.Sprintf("%s found", name), "field", name, "value", v)
		return v
	case browser.IsMissing(err):
		logger.WarnContext(ctx, fmt.Sprintf("%s not found", name), "field", name, "url", page.URL())
		return NotFound
	default:
		logger.ErrorContext(ctx, fmt.Sprintf("Unexpected error getting %s field", name),
			"field", name, "url", page.URL(), "err", err)
		return NotFound
	}
}

// OfferExtractor turns a loaded offer page into a JobOffer. Fields are read
// independently so one broken selector costs one field.
type OfferExtractor struct {
	Employer     FieldFunc
	Position     FieldFunc
	Salary       FieldFunc
	Requirements FieldFunc
	Logger       *slog.Logger
}

func (e OfferExtractor) Extract(ctx context.Context, page browser.Page, url string) JobOffer {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("url", url)
	return JobOffer{
		Employer:     ExtractField(ctx, logger, "Employer", page, e.Employer),
		Position:     ExtractField(ctx, logger, "Position", page, e.Position),
		Salary:       ExtractField(ctx, logger, "Salary", page, e.Salary),
		Requirements: ExtractField(ctx, logger, "Requirements", page, e.Requirements),
		URL:          CanonicalURL(url),
	}
}

// TextOf is the common recipe: inner text of the first match of selector.
func TextOf(selector string, timeout time.Duration) FieldFunc {
	return func(_ context.Context, page browser.Page) (string, error) {
		return page.Locator(selector).First().InnerText(timeout)
	}
}

// JoinedTextOf joins the inner texts of every match of selector with sep.
// No match counts as a missing element.
func JoinedTextOf(selector, sep string) FieldFunc {
	return func(_ context.Context, page browser.Page) (string, error) {
		texts, err := page.Locator(selector).AllInnerTexts()
		if err != nil {
			return "", err
		}
		if len(texts) == 0 {
			return "", fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
		}
		return strings.Join(texts, sep), nil
	}
}
