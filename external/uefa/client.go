package uefa

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

const (
	coefficientsPath = "v2/coefficients"

	defaultUserAgent = "Mozilla/5.0 (compatible; UCL-Replacement-Spot-Race/1.0)"
	acceptHTML       = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	DefaultMaxBodyBytes = 6 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Logger     *logging.Logger

	// MaxBodyBytes caps a response body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Client reads the club coefficient ranking and the public rankings page
// that embeds its credentials.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		maxBody:    maxBodyBytes(cfg.MaxBodyBytes),
		logger:     logger.Named("uefa"),
	}
}

// NormalizeBaseURL guarantees a trailing slash so relative paths resolve
// below it.
func NormalizeBaseURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}

// Endpoint is the coefficients URL under the competition API base.
func Endpoint(compAPIURL string) string {
	return NormalizeBaseURL(compAPIURL) + coefficientsPath
}

// PageURL renders the request URL for one ranking page.
func PageURL(compAPIURL string, q coefficient.PageQuery) string {
	values := url.Values{}
	values.Set("coefficientRange", firstNonEmpty(q.CoefficientRange, coefficient.RangeOverall))
	values.Set("coefficientType", firstNonEmpty(q.CoefficientType, coefficient.TypeMenClub))
	values.Set("seasonYear", strconv.Itoa(q.SeasonYear))
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("pagesize", strconv.Itoa(q.PageSize))
	values.Set("language", strings.ToUpper(q.Language))
	return Endpoint(compAPIURL) + "?" + values.Encode()
}

// FetchPage loads one ranking page. Members without a provider position
// get their 1-based position across all pages fetched so far.
func (c *Client) FetchPage(ctx context.Context, cfg coefficient.APIConfig, q coefficient.PageQuery) (coefficient.Page, error) {
	requestURL := PageURL(cfg.CompAPIURL, q)
	raw, err := c.get(ctx, requestURL, map[string]string{
		"x-api-key": cfg.APIKey,
		"accept":    "application/json",
	})
	if err != nil {
		return coefficient.Page{}, crerr.Wrapf(err, "fetch coefficients page %d", q.Page)
	}

	var payload rankingPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return coefficient.Page{}, crerr.Wrapf(err, "decode coefficients page %d", q.Page)
	}
	if payload.Data == nil || payload.Data.Members == nil {
		return coefficient.Page{}, &usecase.SchemaViolationError{Source: requestURL, Field: "data.members"}
	}

	offset := 0
	if q.Page > 1 {
		offset = (q.Page - 1) * q.PageSize
	}
	members := make([]coefficient.Entry, 0, len(*payload.Data.Members))
	for i, item := range *payload.Data.Members {
		members = append(members, MapClub(item, offset+i+1))
	}

	return coefficient.Page{
		RequestURL:     requestURL,
		Members:        members,
		TotalElements:  parseTotalElements(payload.Meta.Collection.TotalElements),
		LastUpdateDate: nonEmpty(payload.Data.LastUpdateDate),
	}, nil
}

// FetchHTML loads the rankings page used for credential discovery.
func (c *Client) FetchHTML(ctx context.Context, pageURL string) ([]byte, error) {
	return c.get(ctx, pageURL, map[string]string{"accept": acceptHTML})
}

func (c *Client) get(ctx context.Context, fullURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("user-agent", c.userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed", "url", fullURL, "error", err)
		return nil, crerr.Wrapf(err, "send request %s", fullURL)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, crerr.Wrapf(err, "read response body %s", fullURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := usecase.NewUpstreamRequestError(fullURL, resp.StatusCode, raw)
		c.logger.WarnContext(ctx, "request failed", "url", fullURL, "status", resp.StatusCode, "body", reqErr.Body)
		return nil, reqErr
	}
	if int64(len(raw)) > c.maxBody {
		c.logger.WarnContext(ctx, "response too large", "url", fullURL, "limit", c.maxBody)
		return nil, &usecase.ResponseTooLargeError{URL: fullURL, Limit: c.maxBody}
	}
	return raw, nil
}

func parseTotalElements(raw any) *int {
	var value int
	switch v := raw.(type) {
	case float64:
		value = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		value = parsed
	default:
		return nil
	}
	if value == 0 {
		return nil
	}
	return &value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func maxBodyBytes(limit int64) int64 {
	if limit <= 0 {
		return DefaultMaxBodyBytes
	}
	return limit
}
