package crawler

import (
	"context"

	"github.com/shopspring/decimal"
)

// Offer is a single marketplace listing extracted from a search page
type Offer struct {
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	URL        string          `json:"url"`
	Identifier string          `json:"identifier"`
}

// Fetcher retrieves the raw search page for a tracked identifier
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) ([]byte, error)
}

// Extractor turns a raw search page into offers.
// An empty result is valid; entries that cannot be parsed are skipped.
type Extractor interface {
	Extract(identifier string, raw []byte) ([]Offer, error)
}

// Selectors contains CSS selectors for the parts of an offer card
type Selectors struct {
	OfferList string
	Link      string
	Title     string
	Code      string
	Price     string
}

// DefaultTitleFunc builds a title for cards that do not show one
type DefaultTitleFunc func(identifier string) string

// SiteConfig describes how to read one marketplace's search results
type SiteConfig struct {
	Name         string
	BaseURL      string
	Selectors    Selectors
	DefaultTitle DefaultTitleFunc
}
