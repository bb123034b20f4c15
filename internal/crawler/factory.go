package crawler

import (
	"sjsage522/partwatch/config"
	"sjsage522/partwatch/services/cache"
)

// RRRSite returns the extraction rules for rrr.lt search results
func RRRSite(baseURL string) SiteConfig {
	return SiteConfig{
		Name:    "rrr",
		BaseURL: baseURL,
		Selectors: Selectors{
			OfferList: `div.products__items[data-testid="product-card"]`,
			Link:      "a.products__items__link",
			Title:     `span.products__text__header[data-testid="product-header"]`,
			Code:      "p.products__code a",
			Price:     `strong[data-testid="product-price"]`,
		},
		DefaultTitle: func(identifier string) string {
			return "Part " + identifier
		},
	}
}

// CreateExtractor creates the extractor for the configured marketplace
func CreateExtractor(cfg *config.Config) *ConfigurableExtractor {
	return NewConfigurableExtractor(RRRSite(cfg.BaseURL))
}

// CreateFetcher creates the search page fetcher from configuration
func CreateFetcher(cfg *config.Config, cacheSvc cache.CacheService) *HTTPFetcher {
	return NewHTTPFetcher(FetcherConfig{
		URLTemplate:       cfg.SearchURLTemplate,
		UserAgent:         cfg.FetchUserAgent,
		ProxyURL:          cfg.FetchProxyURL,
		Timeout:           cfg.FetchTimeout,
		RequestsPerSecond: cfg.FetchRPS,
		CloudflareBypass:  cfg.CloudflareBypass,
		Cooldown:          cfg.RateLimitCooldown,
	}, cacheSvc)
}
