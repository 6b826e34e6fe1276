package uefa

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/cache"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

var (
	apiKeyPattern     = windowValuePattern("apiKey")
	compAPIURLPattern = windowValuePattern("compApiUrl")
)

func windowValuePattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`window\.` + key + `\s*=\s*'([^']+)'`)
}

// StaticConfigResolver returns explicitly configured credentials.
type StaticConfigResolver struct {
	APIKey     string
	CompAPIURL string
	PageURL    string
}

func (r StaticConfigResolver) ResolveAPIConfig(context.Context) (coefficient.APIConfig, error) {
	apiKey := strings.TrimSpace(r.APIKey)
	compAPIURL := strings.TrimSpace(r.CompAPIURL)
	if apiKey == "" {
		return coefficient.APIConfig{}, &usecase.ConfigurationError{Key: "UEFA_API_KEY", Reason: "is required"}
	}
	if compAPIURL == "" {
		return coefficient.APIConfig{}, &usecase.ConfigurationError{Key: "UEFA_COMP_API_URL", Reason: "is required"}
	}
	return coefficient.APIConfig{
		APIKey:     apiKey,
		CompAPIURL: NormalizeBaseURL(compAPIURL),
		Source:     coefficient.ConfigSourceEnv,
		PageURL:    r.PageURL,
	}, nil
}

type htmlFetcher interface {
	FetchHTML(ctx context.Context, pageURL string) ([]byte, error)
}

// ScrapeConfigResolver reads window.apiKey and window.compApiUrl from the
// public rankings page. Explicit values, when set, win over scraped ones.
type ScrapeConfigResolver struct {
	fetcher  htmlFetcher
	pageURL  string
	override StaticConfigResolver
	cache    *cache.Store[coefficient.APIConfig]
}

func NewScrapeConfigResolver(fetcher htmlFetcher, pageURL string, override StaticConfigResolver, ttl time.Duration) *ScrapeConfigResolver {
	return &ScrapeConfigResolver{
		fetcher:  fetcher,
		pageURL:  strings.TrimSpace(pageURL),
		override: override,
		cache:    cache.NewStore[coefficient.APIConfig](ttl),
	}
}

func (r *ScrapeConfigResolver) ResolveAPIConfig(ctx context.Context) (coefficient.APIConfig, error) {
	return r.cache.GetOrLoad(ctx, r.pageURL, r.scrape)
}

func (r *ScrapeConfigResolver) scrape(ctx context.Context) (coefficient.APIConfig, error) {
	html, err := r.fetcher.FetchHTML(ctx, r.pageURL)
	if err != nil {
		return coefficient.APIConfig{}, crerr.Wrapf(err, "fetch rankings page %s", r.pageURL)
	}

	scrapedKey, scrapedURL, err := ExtractAPIConfig(html)
	if err != nil {
		return coefficient.APIConfig{}, crerr.Wrapf(err, "parse rankings page %s", r.pageURL)
	}

	overrideKey := strings.TrimSpace(r.override.APIKey)
	overrideURL := strings.TrimSpace(r.override.CompAPIURL)
	apiKey := firstNonEmpty(overrideKey, scrapedKey)
	compAPIURL := firstNonEmpty(overrideURL, scrapedURL)
	if apiKey == "" || compAPIURL == "" {
		return coefficient.APIConfig{}, &usecase.ConfigurationError{
			Key:    "UEFA_API_KEY/UEFA_COMP_API_URL",
			Reason: "could not be resolved from the rankings page; set both explicitly",
		}
	}

	source := coefficient.ConfigSourceScraped
	if overrideKey != "" || overrideURL != "" {
		source = coefficient.ConfigSourceMixed
	}
	return coefficient.APIConfig{
		APIKey:     apiKey,
		CompAPIURL: NormalizeBaseURL(compAPIURL),
		Source:     source,
		PageURL:    r.pageURL,
	}, nil
}

// ExtractAPIConfig looks for the inline script assignments first and falls
// back to scanning the whole document.
func ExtractAPIConfig(html []byte) (apiKey, compAPIURL string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", "", crerr.Wrap(err, "parse html")
	}

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if apiKey == "" {
			apiKey = firstSubmatch(apiKeyPattern, text)
		}
		if compAPIURL == "" {
			compAPIURL = firstSubmatch(compAPIURLPattern, text)
		}
		return apiKey == "" || compAPIURL == ""
	})

	if apiKey == "" {
		apiKey = firstSubmatch(apiKeyPattern, string(html))
	}
	if compAPIURL == "" {
		compAPIURL = firstSubmatch(compAPIURLPattern, string(html))
	}
	return apiKey, compAPIURL, nil
}

func firstSubmatch(pattern *regexp.Regexp, text string) string {
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// NewConfigResolver uses explicit credentials when both are set and the
// scraping resolver otherwise.
func NewConfigResolver(fetcher htmlFetcher, explicit StaticConfigResolver, ttl time.Duration) usecase.CoefficientConfigResolver {
	if strings.TrimSpace(explicit.APIKey) != "" && strings.TrimSpace(explicit.CompAPIURL) != "" {
		return explicit
	}
	return NewScrapeConfigResolver(fetcher, explicit.PageURL, explicit, ttl)
}
