package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

const maxCoefficientPages = 10

type CoefficientSyncConfig struct {
	SeasonYear int
	Limit      int
	PageSize   int
	Language   string
	// Endpoint renders the ranking endpoint for a resolved base URL.
	Endpoint func(compAPIURL string) string
}

type CoefficientSyncResult struct {
	RunID        string `json:"run_id"`
	Fetched      int    `json:"fetched"`
	Pages        int    `json:"pages"`
	ConfigSource string `json:"config_source"`
}

type CoefficientSyncService struct {
	resolver CoefficientConfigResolver
	provider CoefficientProvider
	writer   SnapshotWriter
	cfg      CoefficientSyncConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewCoefficientSyncService(
	resolver CoefficientConfigResolver,
	provider CoefficientProvider,
	writer SnapshotWriter,
	cfg CoefficientSyncConfig,
	logger *logging.Logger,
) *CoefficientSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = "DE"
	}
	if cfg.Endpoint == nil {
		cfg.Endpoint = func(compAPIURL string) string {
			return strings.TrimRight(compAPIURL, "/") + "/v2/coefficients"
		}
	}

	return &CoefficientSyncService{
		resolver: resolver,
		provider: provider,
		writer:   writer,
		cfg:      cfg,
		logger:   logger.Named("coefficient_sync"),
		now:      time.Now,
	}
}

// Run pages through the ranking until the limit is reached, a page comes
// back empty or short, or the page cap is hit. The collected clubs are
// written to coefficients.json ordered by rank.
func (s *CoefficientSyncService) Run(ctx context.Context, runID string) (result CoefficientSyncResult, err error) {
	ctx, run := beginJob(ctx, s.logger, "coefficients", runID,
		attribute.Int("season_year", s.cfg.SeasonYear),
		attribute.Int("limit", s.cfg.Limit),
	)
	defer func() {
		err = run.finish(ctx, err, "fetched", result.Fetched, "pages", result.Pages)
	}()
	result.RunID = runID

	if s.cfg.SeasonYear <= 0 {
		return result, &ConfigurationError{Key: "UEFA_RANKINGS_YEAR", Reason: "must be a positive year"}
	}

	apiCfg, err := s.resolver.ResolveAPIConfig(ctx)
	if err != nil {
		return result, errors.Wrap(err, "resolve coefficient api config")
	}
	result.ConfigSource = apiCfg.Source

	query := coefficient.PageQuery{
		SeasonYear:       s.cfg.SeasonYear,
		PageSize:         s.cfg.PageSize,
		Language:         s.cfg.Language,
		CoefficientRange: coefficient.RangeOverall,
		CoefficientType:  coefficient.TypeMenClub,
	}

	clubs := make([]coefficient.Entry, 0, s.cfg.Limit)
	var (
		lastURL        string
		totalAvailable *int
		lastUpdate     *string
	)
	for page := 1; len(clubs) < s.cfg.Limit && page <= maxCoefficientPages; page++ {
		query.Page = page
		pageCtx, span := startChildSpan(ctx, "coefficients.page", attribute.Int("page", page))
		fetched, fetchErr := s.provider.FetchPage(pageCtx, apiCfg, query)
		recordSpanError(span, fetchErr)
		span.End()
		if fetchErr != nil {
			return result, errors.Wrapf(fetchErr, "fetch coefficient page=%d", page)
		}

		result.Pages = page
		lastURL = fetched.RequestURL
		if fetched.TotalElements != nil {
			totalAvailable = fetched.TotalElements
		}
		if fetched.LastUpdateDate != nil {
			lastUpdate = fetched.LastUpdateDate
		}
		if len(fetched.Members) == 0 {
			break
		}
		clubs = append(clubs, fetched.Members...)
		if len(fetched.Members) < s.cfg.PageSize {
			break
		}
	}

	sort.SliceStable(clubs, func(i, j int) bool {
		return clubs[i].Rank < clubs[j].Rank
	})
	if len(clubs) > s.cfg.Limit {
		clubs = clubs[:s.cfg.Limit]
	}
	if len(clubs) == 0 {
		return result, errors.Wrapf(ErrNotFound, "coefficient ranking returned no clubs for season %d", s.cfg.SeasonYear)
	}
	result.Fetched = len(clubs)

	snapshot := coefficient.Snapshot{
		GeneratedAt: formatInstant(s.now()),
		Source: coefficient.Source{
			RankingsPageURL:  apiCfg.PageURL,
			Endpoint:         s.cfg.Endpoint(apiCfg.CompAPIURL),
			LastRequestURL:   lastURL,
			ConfigSource:     apiCfg.Source,
			SeasonYear:       s.cfg.SeasonYear,
			CoefficientRange: query.CoefficientRange,
			CoefficientType:  query.CoefficientType,
			Language:         query.Language,
			PageSize:         s.cfg.PageSize,
			RequestedLimit:   s.cfg.Limit,
			TotalAvailable:   totalAvailable,
			Fetched:          len(clubs),
			LastUpdateDate:   lastUpdate,
		},
		Clubs: clubs,
	}

	if err := s.writer.WriteAll(ctx, []Artifact{{Path: CoefficientSnapshotPath, Payload: snapshot}}); err != nil {
		return result, errors.Wrap(err, "write coefficient snapshot")
	}
	return result, nil
}
