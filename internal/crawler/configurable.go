package crawler

import (
	"bytes"

	"sjsage522/partwatch/helpers"
	"sjsage522/partwatch/logger"
	perrors "sjsage522/partwatch/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// ConfigurableExtractor reads offers from a search page using a SiteConfig
type ConfigurableExtractor struct {
	Site SiteConfig
	log  *logger.Logger
}

// NewConfigurableExtractor creates a new selector-driven extractor
func NewConfigurableExtractor(site SiteConfig) *ConfigurableExtractor {
	return &ConfigurableExtractor{
		Site: site,
		log:  logger.ForExtractor().WithStr("site", site.Name),
	}
}

// Extract returns the offers on the page in document order
func (e *ConfigurableExtractor) Extract(identifier string, raw []byte) ([]Offer, error) {
	doc, err := createDocument(bytes.NewReader(raw))
	if err != nil {
		return nil, perrors.NewParsing(identifier, "failed to parse search page", err)
	}

	offers := []Offer{}
	doc.Find(e.Site.Selectors.OfferList).Each(func(i int, s *goquery.Selection) {
		offer, err := e.processOffer(identifier, s)
		if err != nil {
			e.log.Debug().
				Err(err).
				Str("identifier", identifier).
				Int("card", i).
				Msg("Skipping offer card")
			return
		}
		if offer != nil {
			offers = append(offers, *offer)
		}
	})

	return offers, nil
}

// processOffer extracts one card. Cards without a link or price yield nil
// without an error; an unreadable link or price yields an error.
func (e *ConfigurableExtractor) processOffer(identifier string, s *goquery.Selection) (*Offer, error) {
	href, exists := s.Find(e.Site.Selectors.Link).First().Attr("href")
	if !exists || helpers.CleanText(href) == "" {
		return nil, nil
	}
	link, err := ResolveURL(e.Site.BaseURL, href)
	if err != nil {
		return nil, err
	}

	priceSel := s.Find(e.Site.Selectors.Price).First()
	if priceSel.Length() == 0 {
		return nil, nil
	}
	price, err := ParsePrice(priceSel.Text())
	if err != nil {
		return nil, err
	}

	title := helpers.CleanText(s.Find(e.Site.Selectors.Title).First().Text())
	if title == "" {
		title = e.defaultTitle(identifier)
	}

	code := identifier
	if e.Site.Selectors.Code != "" {
		if text := helpers.CleanText(s.Find(e.Site.Selectors.Code).First().Text()); text != "" {
			code = text
		}
	}

	return &Offer{
		Title:      title,
		Price:      price,
		URL:        link,
		Identifier: code,
	}, nil
}

func (e *ConfigurableExtractor) defaultTitle(identifier string) string {
	if e.Site.DefaultTitle != nil {
		return e.Site.DefaultTitle(identifier)
	}
	return "Part " + identifier
}
