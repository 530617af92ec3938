package scraper

import (
	"log/slog"
	"time"
)

// SiteOptions tune the page waits of a board implementation.
type SiteOptions struct {
	// ElementTimeout bounds waits for controls and offer fields.
	ElementTimeout time.Duration
	// ListingTimeout bounds the wait for the results container and the
	// page-count indicator.
	ListingTimeout time.Duration
	// SettleDelay is the pause after a click or scroll that reloads results.
	SettleDelay time.Duration
	// ScrollStep is the pixel distance of one infinite-scroll step.
	ScrollStep int
	Logger     *slog.Logger
}

func (o SiteOptions) WithDefaults() SiteOptions {
	if o.ElementTimeout <= 0 {
		o.ElementTimeout = 5 * time.Second
	}
	if o.ListingTimeout <= 0 {
		o.ListingTimeout = 5 * time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 300 * time.Millisecond
	}
	if o.ScrollStep <= 0 {
		o.ScrollStep = 400
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
