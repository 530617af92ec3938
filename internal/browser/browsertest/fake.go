// Package browsertest provides in-memory fakes of the browser surface for
// tests. Pages are populated with elements keyed by the exact selector
// string the code under test passes to Locator.
package browsertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-jobsheet-automation/internal/browser"
)

// Element fakes a located node. Items makes it a multi-node match; Children
// answers nested Locator calls. Err is returned by every operation that
// would touch the DOM.
type Element struct {
	mu sync.Mutex

	Text     string
	Texts    []string
	Attrs    map[string]string
	Children map[string]*Element
	Items    []*Element
	Err      error
	OnClick  func() error

	Clicks  int
	Typed   []string
	missing bool
}

// Missing returns an element that never resolves, as a locator with no
// match behaves after its wait bound.
func Missing() *Element {
	return &Element{Err: browser.ErrTimeout, missing: true}
}

// Text returns an element with the given inner text.
func Text(s string) *Element {
	return &Element{Text: s}
}

// Link returns an element carrying an href attribute.
func Link(href string) *Element {
	return &Element{Attrs: map[string]string{"href": href}}
}

// List returns a multi-node element.
func List(items ...*Element) *Element {
	return &Element{Items: items}
}

// Failing returns an element whose every operation fails with err.
func Failing(err error) *Element {
	return &Element{Err: err}
}

func (e *Element) Locator(selector string) browser.Element {
	if child, ok := e.Children[selector]; ok {
		return child
	}
	return Missing()
}

func (e *Element) First() browser.Element {
	if len(e.Items) > 0 {
		return e.Items[0]
	}
	return e
}

func (e *Element) Nth(index int) browser.Element {
	if index >= 0 && index < len(e.Items) {
		return e.Items[index]
	}
	if index == 0 && len(e.Items) == 0 {
		return e
	}
	return Missing()
}

func (e *Element) All() ([]browser.Element, error) {
	if e.missing {
		return nil, nil
	}
	if len(e.Items) == 0 {
		return []browser.Element{e}, nil
	}
	out := make([]browser.Element, len(e.Items))
	for i, item := range e.Items {
		out[i] = item
	}
	return out, nil
}

func (e *Element) Count() (int, error) {
	switch {
	case e.missing:
		return 0, nil
	case len(e.Items) > 0:
		return len(e.Items), nil
	default:
		return 1, nil
	}
}

func (e *Element) Click(time.Duration) error {
	e.mu.Lock()
	e.Clicks++
	onClick := e.OnClick
	e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	if onClick != nil {
		return onClick()
	}
	return nil
}

func (e *Element) Type(text string, _ time.Duration) error {
	if e.Err != nil {
		return e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Typed = append(e.Typed, text)
	return nil
}

func (e *Element) InnerText(time.Duration) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

func (e *Element) AllInnerTexts() ([]string, error) {
	if e.missing {
		return nil, nil
	}
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Texts != nil {
		return e.Texts, nil
	}
	if len(e.Items) > 0 {
		texts := make([]string, len(e.Items))
		for i, item := range e.Items {
			texts[i] = item.Text
		}
		return texts, nil
	}
	return []string{e.Text}, nil
}

func (e *Element) Attribute(name string, _ time.Duration) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Attrs[name], nil
}

func (e *Element) WaitVisible(time.Duration) error {
	return e.Err
}

// ClickCount is safe to call while other goroutines click.
func (e *Element) ClickCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Clicks
}

// Page fakes a browser tab.
type Page struct {
	mu sync.Mutex

	Elements   map[string]*Element
	CurrentURL string
	GotoErr    error
	GotoDelay  time.Duration // slows Goto down
	OnScroll   func(p *Page, dy int) error

	Visited []string
	Scrolls int
	Waited  time.Duration
	Shots   []string
	closed  bool
	onClose func()
}

func NewPage() *Page {
	return &Page{Elements: make(map[string]*Element)}
}

// Set registers el under selector and returns the page for chaining.
func (p *Page) Set(selector string, el *Element) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Elements[selector] = el
	return p
}

func (p *Page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.GotoDelay > 0 {
		time.Sleep(p.GotoDelay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visited = append(p.Visited, url)
	if p.GotoErr != nil {
		return p.GotoErr
	}
	p.CurrentURL = url
	return nil
}

func (p *Page) Locator(selector string) browser.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.Elements[selector]; ok {
		return el
	}
	return Missing()
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *Page) ScrollBy(dy int) error {
	p.mu.Lock()
	p.Scrolls++
	onScroll := p.OnScroll
	p.mu.Unlock()
	if onScroll != nil {
		return onScroll(p, dy)
	}
	return nil
}

func (p *Page) Wait(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Waited += d
}

func (p *Page) Screenshot(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Shots = append(p.Shots, path)
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("page already closed")
	}
	p.closed = true
	onClose := p.onClose
	p.mu.Unlock()
	if onClose != nil {
		onClose()
	}
	return nil
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Session hands out pages built by NewPageFunc and tracks how many are
// open at once.
type Session struct {
	mu sync.Mutex

	NewPageFunc func(n int) (*Page, error)

	Pages   []*Page
	next    int
	open    int
	maxOpen int
	closed  bool
}

func NewSession(newPage func(n int) (*Page, error)) *Session {
	return &Session{NewPageFunc: newPage}
}

func (s *Session) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	n := s.next
	s.next++
	s.mu.Unlock()

	var (
		p   *Page
		err error
	)
	if s.NewPageFunc != nil {
		p, err = s.NewPageFunc(n)
	} else {
		p = NewPage()
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pages = append(s.Pages, p)
	s.open++
	if s.open > s.maxOpen {
		s.maxOpen = s.open
	}
	p.onClose = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.open--
	}
	return p, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// OpenPages is the number of pages not yet closed.
func (s *Session) OpenPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// MaxOpenPages is the high-water mark of simultaneously open pages.
func (s *Session) MaxOpenPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxOpen
}

// Opened is the total number of pages handed out.
func (s *Session) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Pages)
}
