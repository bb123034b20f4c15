package ledger

import (
	"sjsage522/partwatch/internal/crawler"

	"github.com/shopspring/decimal"
)

// Filter combines the price ceiling with a Ledger
type Filter struct {
	ceiling decimal.Decimal
	ledger  *Ledger
}

// NewFilter creates a filter admitting offers priced at or below ceiling
func NewFilter(ceiling decimal.Decimal, ledger *Ledger) *Filter {
	return &Filter{ceiling: ceiling, ledger: ledger}
}

// Ceiling returns the configured price ceiling
func (f *Filter) Ceiling() decimal.Decimal {
	return f.ceiling
}

// Ledger returns the underlying ledger
func (f *Filter) Ledger() *Ledger {
	return f.ledger
}

// WithinBudget reports whether the offer is priced at or below the ceiling
func (f *Filter) WithinBudget(offer crawler.Offer) bool {
	return offer.Price.LessThanOrEqual(f.ceiling)
}

// Qualifies reports whether the offer is within budget and unseen,
// without changing the ledger.
func (f *Filter) Qualifies(offer crawler.Offer) (DedupKey, bool) {
	key := KeyOf(offer)
	if !f.WithinBudget(offer) {
		return key, false
	}
	return key, !f.ledger.Contains(key)
}

// Admit claims the offer's key when it is within budget and unseen.
// A true result means the caller owns the one notification for that key.
func (f *Filter) Admit(offer crawler.Offer) bool {
	if !f.WithinBudget(offer) {
		return false
	}
	return f.ledger.Claim(KeyOf(offer))
}

// Commit records a key after a confirmed delivery
func (f *Filter) Commit(key DedupKey) {
	f.ledger.Claim(key)
}
