package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Headless        bool
	PageLoadTimeout time.Duration
	// InstallBrowsers downloads the Chromium build before launch.
	InstallBrowsers bool
}

// PlaywrightManager owns the Playwright driver process and one Chromium
// instance. Sessions created from it are independent browser contexts.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

func NewPlaywright(ctx context.Context, opts Options) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.InstallBrowsers {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	return &PlaywrightManager{pw: pw, browser: b, opts: opts}, nil
}

// NewSession creates a fresh browser context, optionally preloaded with
// cookies.
func (pm *PlaywrightManager) NewSession(cookies []playwright.OptionalCookie) (Session, error) {
	bctx, err := pm.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			bctx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return &session{bctx: bctx, navTimeout: pm.opts.PageLoadTimeout}, nil
}

func (pm *PlaywrightManager) Close() error {
	var errs []error
	if pm.browser != nil {
		errs = append(errs, pm.browser.Close())
	}
	if pm.pw != nil {
		errs = append(errs, pm.pw.Stop())
	}
	return errors.Join(errs...)
}

type session struct {
	bctx       playwright.BrowserContext
	navTimeout time.Duration
}

func (s *session) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &page{p: p, navTimeout: s.navTimeout}, nil
}

func (s *session) Close() error {
	return s.bctx.Close()
}

type page struct {
	p          playwright.Page
	navTimeout time.Duration
}

func (pg *page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := pg.p.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(pg.navTimeout),
	})
	return translate(err)
}

func (pg *page) Locator(selector string) Element {
	return &element{l: pg.p.Locator(selector)}
}

func (pg *page) URL() string {
	return pg.p.URL()
}

func (pg *page) ScrollBy(dy int) error {
	_, err := pg.p.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", dy))
	return translate(err)
}

func (pg *page) Wait(d time.Duration) {
	pg.p.WaitForTimeout(float64(d.Milliseconds()))
}

func (pg *page) Screenshot(path string) error {
	_, err := pg.p.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return translate(err)
}

func (pg *page) Close() error {
	return pg.p.Close()
}

type element struct {
	l playwright.Locator
}

func (e *element) Locator(selector string) Element {
	return &element{l: e.l.Locator(selector)}
}

func (e *element) First() Element {
	return &element{l: e.l.First()}
}

func (e *element) Nth(index int) Element {
	return &element{l: e.l.Nth(index)}
}

func (e *element) All() ([]Element, error) {
	locators, err := e.l.All()
	if err != nil {
		return nil, translate(err)
	}
	out := make([]Element, len(locators))
	for i, l := range locators {
		out[i] = &element{l: l}
	}
	return out, nil
}

func (e *element) Count() (int, error) {
	n, err := e.l.Count()
	return n, translate(err)
}

func (e *element) Click(timeout time.Duration) error {
	return translate(e.l.Click(playwright.LocatorClickOptions{Timeout: millis(timeout)}))
}

func (e *element) Type(text string, timeout time.Duration) error {
	return translate(e.l.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Timeout: millis(timeout),
	}))
}

func (e *element) InnerText(timeout time.Duration) (string, error) {
	text, err := e.l.InnerText(playwright.LocatorInnerTextOptions{Timeout: millis(timeout)})
	return text, translate(err)
}

func (e *element) AllInnerTexts() ([]string, error) {
	texts, err := e.l.AllInnerTexts()
	return texts, translate(err)
}

func (e *element) Attribute(name string, timeout time.Duration) (string, error) {
	val, err := e.l.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: millis(timeout)})
	return val, translate(err)
}

func (e *element) WaitVisible(timeout time.Duration) error {
	return translate(e.l.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	}))
}

func millis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

// translate maps playwright timeouts onto ErrTimeout so callers never
// depend on the driver's error types.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
