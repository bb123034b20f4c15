package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"sjsage522/partwatch/config"
	"sjsage522/partwatch/helpers"
	"sjsage522/partwatch/logger"
	perrors "sjsage522/partwatch/pkg/errors"
	"sjsage522/partwatch/services/cache"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// statusSiteFrozen is sent by some storefronts instead of 429
const statusSiteFrozen = 430

// FetcherConfig configures the search page fetcher
type FetcherConfig struct {
	URLTemplate       string
	UserAgent         string
	ProxyURL          string
	Timeout           time.Duration
	RequestsPerSecond float64
	CloudflareBypass  bool
	// Cooldown is how long an identifier is not fetched after a 429
	Cooldown time.Duration
}

// HTTPFetcher fetches search pages with a browser-like client
type HTTPFetcher struct {
	http     *resty.Client
	cfg      FetcherConfig
	cacheSvc cache.CacheService
}

// NewHTTPFetcher creates a new fetcher. cacheSvc holds rate-limit cooldowns
// and may be nil to disable them.
func NewHTTPFetcher(cfg FetcherConfig, cacheSvc cache.CacheService) *HTTPFetcher {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeaders(helpers.BrowserHeaders(cfg.UserAgent))

	// SetProxy needs the plain *http.Transport, so it goes before the bypass wrapper
	if cfg.ProxyURL != "" {
		client.SetProxy(cfg.ProxyURL)
	}
	if cfg.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	if cfg.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &HTTPFetcher{
		http:     client,
		cfg:      cfg,
		cacheSvc: cacheSvc,
	}
}

// SearchURL renders the search URL for an identifier
func (f *HTTPFetcher) SearchURL(identifier string) string {
	return strings.ReplaceAll(f.cfg.URLTemplate, config.SearchPlaceholder, url.QueryEscape(identifier))
}

func cooldownKey(identifier string) string {
	return "partwatch_cooldown_" + url.QueryEscape(identifier)
}

// Fetch returns the UTF-8 body of the search page for identifier
func (f *HTTPFetcher) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	log := logger.ForFetcher(identifier)

	if f.cacheSvc != nil {
		_, err := f.cacheSvc.Get(cooldownKey(identifier))
		switch {
		case err == nil:
			return nil, perrors.NewRateLimit(identifier, f.cfg.Cooldown)
		case !errors.Is(err, cache.ErrMiss):
			// cooldowns are unknown while the cache is down; fetch anyway
			cacheErr := perrors.NewCache(identifier, "failed to read rate-limit cooldown", err)
			logger.ForCache().Warn().Err(cacheErr).Msg("Cache unavailable")
		}
	}

	searchURL := f.SearchURL(identifier)
	start := time.Now()

	res, err := f.http.R().
		SetContext(ctx).
		Get(searchURL)
	if err != nil {
		return nil, perrors.NewNetwork(identifier, "failed to fetch search page", err)
	}

	log.Debug().
		Int("status", res.StatusCode()).
		Int("bytes", len(res.Body())).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched search page")

	if slices.Contains([]int{http.StatusTooManyRequests, statusSiteFrozen}, res.StatusCode()) {
		f.startCooldown(identifier, log)
		retryAfter := res.Header().Get("Retry-After")
		return nil, perrors.New(perrors.ErrorTypeRateLimit, identifier,
			fmt.Sprintf("rate limited (status %d, retry after %q)", res.StatusCode(), retryAfter), nil)
	}

	if res.Header().Get("cf-mitigated") != "" {
		return nil, perrors.New(perrors.ErrorTypeRateLimit, identifier,
			fmt.Sprintf("anti-bot challenge (status %d)", res.StatusCode()), nil)
	}

	if !res.IsSuccess() {
		return nil, perrors.NewNetwork(identifier,
			fmt.Sprintf("unexpected status code: %d", res.StatusCode()), nil)
	}

	body, err := helpers.DecodeToUTF8(res.Body(), res.Header().Get("Content-Type"))
	if err != nil {
		return nil, perrors.NewParsing(identifier, "failed to decode search page", err)
	}

	return body, nil
}

func (f *HTTPFetcher) startCooldown(identifier string, log *logger.Logger) {
	if f.cacheSvc == nil || f.cfg.Cooldown <= 0 {
		return
	}

	seconds := strconv.Itoa(int(f.cfg.Cooldown / time.Second))
	if err := f.cacheSvc.Set(cooldownKey(identifier), []byte(seconds), f.cfg.Cooldown); err != nil {
		log.Warn().Err(err).Msg("Failed to store rate-limit cooldown")
		return
	}

	log.Warn().Dur("cooldown", f.cfg.Cooldown).Msg("Rate limited, pausing fetches for identifier")
}
