package apifootball

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/rawdata"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/resilience"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

const (
	DefaultBaseURL = "https://v3.football.api-sports.io"
	SourceName     = "api-football"

	headerKey  = "x-apisports-key"
	headerHost = "x-apisports-host"

	DefaultMaxBodyBytes = 6 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Host       string
	APIKey     string
	Timeout    time.Duration
	Logger     *logging.Logger

	// MaxBodyBytes caps a response body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Client talks to the football statistics API. It never retries; a failed
// call surfaces to the job unchanged apart from added context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
	maxBody    int64
	logger     *logging.Logger
	flight     resilience.Group[[]byte]
	now        func() time.Time
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

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = HostOf(baseURL)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		host:       host,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxBody:    maxBodyBytes(cfg.MaxBodyBytes),
		logger:     logger.Named("apifootball"),
		now:        time.Now,
	}
}

// HostOf returns the host part of rawURL, or "" when it does not parse.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return parsed.Host
}

// Endpoint returns the absolute URL of endpoint without a query string.
func (c *Client) Endpoint(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(strings.TrimSpace(endpoint), "/")
}

// BuildURL joins endpoint onto the base URL. Nil, nil-pointer and empty
// string params are omitted; numbers are sent in decimal form.
func (c *Client) BuildURL(endpoint string, params map[string]any) string {
	values := url.Values{}
	for key, value := range params {
		if encoded, ok := encodeParam(value); ok {
			values.Set(key, encoded)
		}
	}

	full := c.Endpoint(endpoint)
	if encoded := values.Encode(); encoded != "" {
		full += "?" + encoded
	}
	return full
}

// Get performs one authenticated request and returns the raw body once the
// envelope reports no errors.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any) ([]byte, string, error) {
	fullURL := c.BuildURL(endpoint, params)
	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		return c.executeRequest(ctx, fullURL)
	})
	if err != nil {
		return nil, fullURL, err
	}

	var probe struct {
		Errors any `json:"errors"`
	}
	if err := sonic.Unmarshal(raw, &probe); err != nil {
		return nil, fullURL, crerr.Wrapf(err, "decode response from %s", fullURL)
	}
	if messages := ParseAPIErrors(probe.Errors); len(messages) > 0 {
		c.logger.WarnContext(ctx, "provider reported errors", "url", fullURL, "errors", messages)
		return nil, fullURL, &usecase.UpstreamAPIError{URL: fullURL, Messages: messages}
	}
	return raw, fullURL, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set(headerKey, c.apiKey)
	if c.host != "" {
		req.Header.Set(headerHost, c.host)
	}

	startedAt := time.Now()
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

	c.logger.DebugContext(ctx, "request done", "url", fullURL, "status", resp.StatusCode, "duration", time.Since(startedAt))
	return raw, nil
}

// FetchStandings loads and normalizes the first table of a league season.
func (c *Client) FetchStandings(ctx context.Context, leagueID int64, season int) (standing.Table, rawdata.Payload, error) {
	params := map[string]any{"league": leagueID, "season": season}
	raw, fullURL, err := c.Get(ctx, "/standings", params)
	if err != nil {
		return standing.Table{}, rawdata.Payload{}, crerr.Wrapf(err, "fetch standings league=%d season=%d", leagueID, season)
	}

	var env envelope[[]standingsItem]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return standing.Table{}, rawdata.Payload{}, crerr.Wrapf(err, "decode standings league=%d", leagueID)
	}
	if env.Response == nil {
		return standing.Table{}, rawdata.Payload{}, &usecase.SchemaViolationError{Source: fullURL, Field: "response"}
	}

	table, err := NormalizeStandings(*env.Response, fullURL)
	if err != nil {
		return standing.Table{}, rawdata.Payload{}, err
	}
	payload := c.buildPayload(rawdata.EntityStandings, "/standings", params, fullURL, raw, len(table.Rows))
	payload.LeagueID = leagueID
	payload.Season = season
	return table, payload, nil
}

// FetchFixtures loads and normalizes fixtures matching q.
func (c *Client) FetchFixtures(ctx context.Context, q fixture.Query) ([]fixture.Fixture, rawdata.Payload, error) {
	params := map[string]any{
		"league":   q.LeagueID,
		"season":   q.Season,
		"from":     q.From,
		"to":       q.To,
		"timezone": q.Timezone,
		"status":   q.Status,
	}
	if q.Last > 0 {
		params["last"] = q.Last
	}
	raw, fullURL, err := c.Get(ctx, "/fixtures", params)
	if err != nil {
		return nil, rawdata.Payload{}, crerr.Wrapf(err, "fetch fixtures league=%d", q.LeagueID)
	}

	var env envelope[[]fixtureItem]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, rawdata.Payload{}, crerr.Wrapf(err, "decode fixtures league=%d", q.LeagueID)
	}
	if env.Response == nil {
		return nil, rawdata.Payload{}, &usecase.SchemaViolationError{Source: fullURL, Field: "response"}
	}

	fixtures := NormalizeFixtures(*env.Response)
	payload := c.buildPayload(rawdata.EntityResults, "/fixtures", params, fullURL, raw, len(fixtures))
	payload.LeagueID = q.LeagueID
	payload.Season = q.Season
	return fixtures, payload, nil
}

func (c *Client) buildPayload(entity, endpoint string, params map[string]any, fullURL string, raw []byte, count int) rawdata.Payload {
	keys := make([]string, 0, len(params))
	for key := range params {
		if _, ok := encodeParam(params[key]); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value, _ := encodeParam(params[key])
		parts = append(parts, key+"="+value)
	}

	hash := sha256.Sum256(raw)
	return rawdata.Payload{
		Source:      SourceName,
		EntityType:  entity,
		EntityKey:   endpoint + "?" + strings.Join(parts, "&"),
		RequestURL:  fullURL,
		ItemCount:   count,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(hash[:]),
		FetchedAt:   c.now().UTC(),
	}
}

func encodeParam(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case *string:
		if v == nil || *v == "" {
			return "", false
		}
		return *v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case *int:
		if v == nil {
			return "", false
		}
		return strconv.Itoa(*v), true
	case *int64:
		if v == nil {
			return "", false
		}
		return strconv.FormatInt(*v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// ParseAPIErrors flattens the provider "errors" field. Arrays and objects
// keep only truthy members; object members are ordered by key.
func ParseAPIErrors(raw any) []string {
	if !truthy(raw) {
		return nil
	}

	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if truthy(item) {
				out = append(out, stringify(item))
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(v))
		for _, key := range keys {
			if truthy(v[key]) {
				out = append(out, stringify(v[key]))
			}
		}
		return out
	default:
		return []string{stringify(v)}
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		encoded, err := sonic.MarshalString(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return encoded
	}
}

func maxBodyBytes(limit int64) int64 {
	if limit <= 0 {
		return DefaultMaxBodyBytes
	}
	return limit
}
