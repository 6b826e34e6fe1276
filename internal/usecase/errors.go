package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// MaxErrorBodyChars bounds the upstream body carried by UpstreamRequestError.
const MaxErrorBodyChars = 500

// ConfigurationError is a missing or invalid setting detected before any
// network call.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UpstreamRequestError is a non-2xx upstream response.
type UpstreamRequestError struct {
	URL        string
	StatusCode int
	Body       string
}

// NewUpstreamRequestError truncates body to MaxErrorBodyChars characters.
func NewUpstreamRequestError(url string, statusCode int, body []byte) *UpstreamRequestError {
	return &UpstreamRequestError{
		URL:        url,
		StatusCode: statusCode,
		Body:       truncateChars(strings.TrimSpace(string(body)), MaxErrorBodyChars),
	}
}

func (e *UpstreamRequestError) Error() string {
	return fmt.Sprintf("upstream request failed (%d) for %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *UpstreamRequestError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}

// ResponseTooLargeError is an upstream body longer than the client accepts.
type ResponseTooLargeError struct {
	URL   string
	Limit int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("upstream response for %s exceeds %d bytes", e.URL, e.Limit)
}

func (e *ResponseTooLargeError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}

// UpstreamAPIError is a 2xx response whose envelope reports errors.
type UpstreamAPIError struct {
	URL      string
	Messages []string
}

func (e *UpstreamAPIError) Error() string {
	return fmt.Sprintf("upstream returned errors for %s: %s", e.URL, strings.Join(e.Messages, ", "))
}

func (e *UpstreamAPIError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}

// SchemaViolationError is a required field missing from a successful response.
type SchemaViolationError struct {
	Source string
	Field  string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("invalid payload from %s: %s is missing", e.Source, e.Field)
}

// Partial coverage kinds.
const (
	CoverageTeamNotInStandings    = "team_not_in_standings"
	CoverageCompetitionNoMatches  = "competition_without_matches"
	CoverageCoefficientFallback   = "coefficient_fallback"
	CoverageEuropeSnapshotMissing = "europe_snapshot_missing"
	CoverageCoefficientsMissing   = "coefficient_snapshot_missing"
)

// PartialCoverageWarning is non-fatal. Jobs log it and surface it in
// snapshot provenance fields.
type PartialCoverageWarning struct {
	Kind    string
	Subject string
	Scope   string
}

func (w PartialCoverageWarning) Error() string {
	return fmt.Sprintf("partial coverage %s: %s (%s)", w.Kind, w.Subject, w.Scope)
}

func truncateChars(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
