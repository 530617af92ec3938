// Package dedup holds the offer identity rule and the set of offers already
// recorded by earlier runs.
package dedup

import (
	"strings"
)

// CanonicalURL strips everything from the first '?' onward. Two offers that
// differ only in their query string are the same offer.
func CanonicalURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// KnownSet is the read-only set of canonical URLs already stored. It is
// built once per run and shared between site drivers without locking.
type KnownSet struct {
	seen map[string]struct{}
}

// NewKnownSet canonicalizes urls and skips blank cells. A header cell is
// kept but can never match an offer URL.
func NewKnownSet(urls []string) *KnownSet {
	ks := &KnownSet{seen: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		ks.seen[CanonicalURL(u)] = struct{}{}
	}
	return ks
}

// Contains checks if a URL has already been recorded.
func (ks *KnownSet) Contains(url string) bool {
	if ks == nil {
		return false
	}
	_, ok := ks.seen[CanonicalURL(url)]
	return ok
}

// ContainsAll reports whether every url is known. An empty list is
// trivially contained.
func (ks *KnownSet) ContainsAll(urls []string) bool {
	for _, u := range urls {
		if !ks.Contains(u) {
			return false
		}
	}
	return true
}

// Missing returns the urls not in the set, in input order and without
// repeats.
func (ks *KnownSet) Missing(urls []string) []string {
	out := make([]string, 0, len(urls))
	emitted := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		c := CanonicalURL(u)
		if _, dup := emitted[c]; dup || ks.Contains(c) {
			continue
		}
		emitted[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (ks *KnownSet) Len() int {
	if ks == nil {
		return 0
	}
	return len(ks.seen)
}
