// Package ledger decides which offers are new and cheap enough to announce.
//
// A Ledger remembers every DedupKey that has been claimed for the life of
// the process. Keys are never removed, so an offer announced once at a
// given identifier, URL and price is suppressed forever, even if it
// disappears from the marketplace and later reappears unchanged.
package ledger

import (
	"strings"
	"sync"

	"sjsage522/partwatch/internal/crawler"
)

// DedupKey fingerprints an offer by identifier, URL and price
type DedupKey string

// KeyOf derives the dedup key of an offer. The price uses its canonical
// decimal form, so 15, 15.0 and 15.00 produce the same key.
func KeyOf(offer crawler.Offer) DedupKey {
	return DedupKey(strings.Join([]string{
		offer.Identifier,
		offer.URL,
		offer.Price.String(),
	}, "|"))
}

// Ledger is a grow-only set of dedup keys
type Ledger struct {
	mu   sync.Mutex
	keys map[DedupKey]struct{}
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{keys: make(map[DedupKey]struct{})}
}

// Contains reports whether key has been claimed
func (l *Ledger) Contains(key DedupKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.keys[key]
	return ok
}

// Claim inserts key and reports whether it was absent
func (l *Ledger) Claim(key DedupKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.keys[key]; ok {
		return false
	}
	l.keys[key] = struct{}{}
	return true
}

// Len returns the number of claimed keys
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.keys)
}
