package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when an element did not appear within its bound.
	ErrTimeout = errors.New("element wait timed out")
	// ErrNotFound is returned when a located element does not exist.
	ErrNotFound = errors.New("element not found")
)

// Element is a lazily resolved handle on zero or more DOM nodes.
// A zero timeout means the driver default.
type Element interface {
	Locator(selector string) Element
	First() Element
	Nth(index int) Element
	All() ([]Element, error)
	Count() (int, error)
	Click(timeout time.Duration) error
	Type(text string, timeout time.Duration) error
	InnerText(timeout time.Duration) (string, error)
	AllInnerTexts() ([]string, error)
	Attribute(name string, timeout time.Duration) (string, error)
	WaitVisible(timeout time.Duration) error
}

// Page is one browser tab.
type Page interface {
	Goto(ctx context.Context, url string) error
	Locator(selector string) Element
	URL() string
	ScrollBy(dy int) error
	Wait(d time.Duration)
	Screenshot(path string) error
	Close() error
}

// Session owns a browser context. Pages opened from one session share
// cookies but nothing else.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// IsMissing reports whether err means an element was absent or never
// became visible in time.
func IsMissing(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNotFound)
}
