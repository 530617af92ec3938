package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go-jobsheet-automation/internal/dedup"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxOpenPages      = 5
	DefaultDuplicateLimit    = 10
	DefaultMaxScrollAttempts = 400
)

// ListingSource exposes the offer URLs visible in the current results view.
// An empty slice is a valid answer: the results never showed up.
type ListingSource interface {
	CurrentCandidates(ctx context.Context) []string
}

// PagedListing is a results feed split into numbered pages.
type PagedListing interface {
	ListingSource
	// PageCount is at least 1.
	PageCount(ctx context.Context) int
	AdvancePage(ctx context.Context) error
}

// ScrollListing is an infinite-scroll results feed. Exhaustion shows up as
// an unchanged candidate list after a step.
type ScrollListing interface {
	ListingSource
	AdvanceScroll(ctx context.Context) error
}

// FetchFunc opens one offer and extracts it.
type FetchFunc func(ctx context.Context, url string) (JobOffer, error)

type SchedulerOptions struct {
	// MaxOpenPages caps simultaneously running fetches.
	MaxOpenPages int
	// DuplicateLimit stops pagination after this many known URLs in a row.
	DuplicateLimit int
	// ScrollDuplicateLimit does the same for scroll feeds. Zero disables it:
	// a scroll feed then ends only when it stops changing or at
	// MaxScrollAttempts.
	ScrollDuplicateLimit int
	// MaxScrollAttempts bounds the scroll loop.
	MaxScrollAttempts int
	// Limiter paces fetch starts. Nil means no pacing.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

func (o SchedulerOptions) withDefaults() SchedulerOptions {
	if o.MaxOpenPages <= 0 {
		o.MaxOpenPages = DefaultMaxOpenPages
	}
	if o.DuplicateLimit <= 0 {
		o.DuplicateLimit = DefaultDuplicateLimit
	}
	if o.ScrollDuplicateLimit < 0 {
		o.ScrollDuplicateLimit = 0
	}
	if o.MaxScrollAttempts <= 0 {
		o.MaxScrollAttempts = DefaultMaxScrollAttempts
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Scheduler collects the offers of a feed that are not known yet. It never
// writes to the known set; the caller persists what it returns.
type Scheduler struct {
	fetch FetchFunc
	opts  SchedulerOptions
}

func NewScheduler(fetch FetchFunc, opts SchedulerOptions) *Scheduler {
	return &Scheduler{fetch: fetch, opts: opts.withDefaults()}
}

// listingState lives for one collection run. A zero limit never stops.
type listingState struct {
	known      *dedup.KnownSet
	limit      int
	seen       map[string]struct{}
	duplicates int
	stop       bool
}

func newListingState(known *dedup.KnownSet, limit int) *listingState {
	return &listingState{known: known, limit: limit, seen: make(map[string]struct{})}
}

// observe walks candidates in encounter order and returns the ones that are
// neither known nor already seen this run. Known URLs feed the consecutive
// duplicate counter; a fresh URL resets it.
func (st *listingState) observe(candidates []string) []string {
	var fresh []string
	for _, u := range candidates {
		u = CanonicalURL(u)
		if _, ok := st.seen[u]; ok {
			continue
		}
		st.seen[u] = struct{}{}

		if st.known.Contains(u) {
			st.duplicates++
			if st.limit > 0 && st.duplicates >= st.limit {
				st.stop = true
			}
			continue
		}
		st.duplicates = 0
		fresh = append(fresh, u)
	}
	return fresh
}

// CollectPaged walks a paged feed page by page, fetching the unknown offers
// of each page before deciding whether to advance.
func (s *Scheduler) CollectPaged(ctx context.Context, src PagedListing, known *dedup.KnownSet) ([]JobOffer, error) {
	logger := s.opts.Logger
	maxPage := src.PageCount(ctx)
	if maxPage < 1 {
		maxPage = 1
	}
	logger.InfoContext(ctx, "📄 Paged feed", "pages", maxPage)

	st := newListingState(known, s.opts.DuplicateLimit)
	var offers []JobOffer

	for page := 0; page < maxPage; page++ {
		if err := ctx.Err(); err != nil {
			return offers, err
		}

		candidates := src.CurrentCandidates(ctx)
		unique := st.observe(candidates)
		logger.InfoContext(ctx, "🔗 Page candidates",
			"page", page+1, "candidates", len(candidates), "new", len(unique))

		offers = append(offers, s.fetchBatch(ctx, unique)...)

		if st.stop {
			logger.InfoContext(ctx, "⏹️ Duplicate limit reached, stopping pagination",
				"page", page+1, "limit", s.opts.DuplicateLimit)
			break
		}
		if page+1 >= maxPage {
			break
		}
		if err := src.AdvancePage(ctx); err != nil {
			return offers, fmt.Errorf("advance to page %d: %w", page+2, err)
		}
	}
	return offers, nil
}

// CollectScrolled scrolls the feed until it stops changing or the attempt
// ceiling is hit, then fetches every unknown offer in one batch. A failed
// scroll step still fetches what was gathered before it.
func (s *Scheduler) CollectScrolled(ctx context.Context, src ScrollListing, known *dedup.KnownSet) ([]JobOffer, error) {
	logger := s.opts.Logger

	latest := src.CurrentCandidates(ctx)
	if known.ContainsAll(latest) {
		logger.InfoContext(ctx, "No new jobs to scrape", "visible", len(latest))
		return nil, nil
	}

	st := newListingState(known, s.opts.ScrollDuplicateLimit)
	accumulated := slices.Clone(latest)
	st.observe(latest)

	attempts := 0
	for ; attempts < s.opts.MaxScrollAttempts && !st.stop; attempts++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := src.AdvanceScroll(ctx); err != nil {
			unique := known.Missing(accumulated)
			logger.WarnContext(ctx, "Scroll failed, fetching what was gathered", "scrolls", attempts, "new", len(unique), "err", err)
			return s.fetchBatch(ctx, unique), fmt.Errorf("scroll step %d: %w", attempts+1, err)
		}
		current := src.CurrentCandidates(ctx)
		if slices.Equal(current, latest) {
			logger.DebugContext(ctx, "Feed exhausted", "scrolls", attempts+1)
			break
		}
		for _, u := range current {
			if _, ok := st.seen[CanonicalURL(u)]; !ok {
				accumulated = append(accumulated, u)
			}
		}
		st.observe(current)
		latest = current
	}
	if st.stop {
		logger.InfoContext(ctx, "⏹️ Duplicate limit reached, stopping scroll",
			"scrolls", attempts, "limit", s.opts.ScrollDuplicateLimit)
	}
	if attempts >= s.opts.MaxScrollAttempts {
		logger.WarnContext(ctx, "Scroll attempt ceiling reached", "attempts", attempts)
	}

	unique := known.Missing(accumulated)
	logger.InfoContext(ctx, "🔗 Urls to scrape", "seen", len(accumulated), "new", len(unique))
	return s.fetchBatch(ctx, unique), nil
}

// fetchBatch fetches urls concurrently, at most MaxOpenPages at a time, and
// waits for all of them. Failures are logged and dropped; the result keeps
// the order of urls.
func (s *Scheduler) fetchBatch(ctx context.Context, urls []string) []JobOffer {
	if len(urls) == 0 {
		return nil
	}
	logger := s.opts.Logger
	sem := semaphore.NewWeighted(int64(s.opts.MaxOpenPages))
	results := make([]*JobOffer, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			logger.WarnContext(ctx, "Batch dispatch interrupted", "dispatched", i, "total", len(urls), "err", err)
			break
		}
		i, u := i, u
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "Offer fetch panicked", "url", u, "panic", r)
				}
			}()

			if s.opts.Limiter != nil {
				if err := s.opts.Limiter.Wait(ctx); err != nil {
					logger.WarnContext(ctx, "Offer fetch not started", "url", u, "err", err)
					return
				}
			}
			offer, err := s.fetch(ctx, u)
			if err != nil {
				logger.WarnContext(ctx, "⚠️ Offer fetch failed", "url", u, "err", err)
				return
			}
			results[i] = &offer
		}()
	}
	wg.Wait()

	offers := make([]JobOffer, 0, len(urls))
	for _, r := range results {
		if r != nil {
			offers = append(offers, *r)
		}
	}
	return offers
}
