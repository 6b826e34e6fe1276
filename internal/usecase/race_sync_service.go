package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/europe"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/rawdata"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

type RaceSyncConfig struct {
	Season   int
	Leagues  []race.TrackedLeague
	TieBreak []string
	// StandingsEndpoint is recorded as the source of every league snapshot.
	StandingsEndpoint string
	// ResultsLimit and ResultsStatus select the recent results archived
	// alongside standings. They are only fetched when an archive is set.
	ResultsLimit  int
	ResultsStatus string
	Timezone      string
	MaxParallel   int
}

type RaceSyncResult struct {
	RunID    string                   `json:"run_id"`
	Leagues  int                      `json:"leagues"`
	Teams    int                      `json:"teams"`
	Archived int                      `json:"archived"`
	Warnings []PartialCoverageWarning `json:"-"`
}

type RaceSyncService struct {
	provider     FootballProvider
	coefficients coefficient.Repository
	europe       europe.Repository
	archive      rawdata.Repository
	writer       SnapshotWriter
	cfg          RaceSyncConfig
	logger       *logging.Logger
	now          func() time.Time
}

// NewRaceSyncService builds the standings job. archive may be nil, in
// which case no raw payloads or results are fetched or stored.
func NewRaceSyncService(
	provider FootballProvider,
	coefficients coefficient.Repository,
	europeRepo europe.Repository,
	archive rawdata.Repository,
	writer SnapshotWriter,
	cfg RaceSyncConfig,
	logger *logging.Logger,
) *RaceSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ResultsLimit <= 0 {
		cfg.ResultsLimit = 50
	}
	if cfg.ResultsStatus == "" {
		cfg.ResultsStatus = fixture.StatusFullTime
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}

	return &RaceSyncService{
		provider:     provider,
		coefficients: coefficients,
		europe:       europeRepo,
		archive:      archive,
		writer:       writer,
		cfg:          cfg,
		logger:       logger.Named("race_sync"),
		now:          time.Now,
	}
}

type leagueFetch struct {
	index    int
	table    standing.Table
	payloads []rawdata.Payload
}

// Run fetches every tracked league, writes one snapshot per league plus
// race.json, and archives raw payloads when configured. Any fetch failure
// aborts the run before anything is written.
func (s *RaceSyncService) Run(ctx context.Context, runID string) (result RaceSyncResult, err error) {
	ctx, run := beginJob(ctx, s.logger, "standings", runID,
		attribute.Int("season", s.cfg.Season),
		attribute.Int("leagues", len(s.cfg.Leagues)),
	)
	defer func() {
		err = run.finish(ctx, err, "leagues", result.Leagues, "teams", result.Teams, "warnings", len(result.Warnings))
	}()
	result.RunID = runID

	if len(s.cfg.Leagues) == 0 {
		return result, &ConfigurationError{Key: "LEAGUE_IDS", Reason: "no tracked leagues configured"}
	}
	if s.cfg.Season <= 0 {
		return result, &ConfigurationError{Key: "SEASON", Reason: "must be a positive year"}
	}

	fetched, err := s.fetchLeagues(ctx)
	if err != nil {
		return result, err
	}

	analyses := make([]LeagueAnalysis, 0, len(fetched))
	payloads := make([]rawdata.Payload, 0, len(fetched)*2)
	for _, item := range fetched {
		tracked := s.cfg.Leagues[item.index]
		analysis := AnalyzeLeague(item.table, tracked)
		for _, name := range analysis.Missing {
			w := PartialCoverageWarning{Kind: CoverageTeamNotInStandings, Subject: name, Scope: item.table.League.Name}
			result.Warnings = append(result.Warnings, w)
			run.warn(ctx, w, "league_id", tracked.LeagueID)
		}
		analyses = append(analyses, analysis)
		payloads = append(payloads, item.payloads...)
	}

	coefficients, err := s.latestCoefficients(ctx)
	if err != nil {
		return result, err
	}
	europeSnapshot, err := s.latestEurope(ctx)
	if err != nil {
		return result, err
	}

	generatedAt := formatInstant(s.now())
	snapshot, warnings := AggregateRace(RaceInput{
		GeneratedAt:  generatedAt,
		Season:       s.cfg.Season,
		Leagues:      analyses,
		LeaguePath:   LeagueSnapshotPath,
		Coefficients: coefficients,
		Europe:       europeSnapshot,
		TieBreak:     NewTieBreak(s.cfg.TieBreak),
	})
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w)
		run.warn(ctx, w)
	}

	artifacts := make([]Artifact, 0, len(analyses)+1)
	for _, analysis := range analyses {
		artifacts = append(artifacts, Artifact{
			Path:    LeagueSnapshotPath(analysis.Table.League.ID),
			Payload: s.leagueSnapshot(generatedAt, analysis),
		})
	}
	artifacts = append(artifacts, Artifact{Path: RaceSnapshotPath, Payload: snapshot})

	result.Leagues = len(analyses)
	result.Teams = len(snapshot.Race)
	if err := s.writer.WriteAll(ctx, artifacts); err != nil {
		return result, errors.Wrap(err, "write standings snapshots")
	}

	if s.archive != nil && len(payloads) > 0 {
		for i := range payloads {
			payloads[i].RunID = runID
		}
		if err := s.archive.Archive(ctx, payloads); err != nil {
			return result, errors.Wrap(err, "archive raw payloads")
		}
		result.Archived = len(payloads)
	}
	return result, nil
}

func (s *RaceSyncService) fetchLeagues(ctx context.Context) ([]leagueFetch, error) {
	p := pool.NewWithResults[leagueFetch]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(s.cfg.MaxParallel)

	for i, tracked := range s.cfg.Leagues {
		i, tracked := i, tracked
		p.Go(func(ctx context.Context) (leagueFetch, error) {
			ctx, span := startChildSpan(ctx, "standings.league", attribute.Int64("league_id", tracked.LeagueID))
			defer span.End()

			table, payload, err := s.provider.FetchStandings(ctx, tracked.LeagueID, s.cfg.Season)
			if err != nil {
				recordSpanError(span, err)
				return leagueFetch{}, errors.Wrapf(err, "fetch standings league=%d", tracked.LeagueID)
			}
			if table.League.ID == 0 {
				table.League.ID = tracked.LeagueID
			}
			item := leagueFetch{index: i, table: table, payloads: []rawdata.Payload{payload}}

			if s.archive != nil {
				_, results, err := s.provider.FetchFixtures(ctx, fixture.Query{
					LeagueID: tracked.LeagueID,
					Season:   s.cfg.Season,
					Status:   s.cfg.ResultsStatus,
					Last:     s.cfg.ResultsLimit,
					Timezone: s.cfg.Timezone,
				})
				if err != nil {
					recordSpanError(span, err)
					return leagueFetch{}, errors.Wrapf(err, "fetch results league=%d", tracked.LeagueID)
				}
				results.EntityType = rawdata.EntityResults
				item.payloads = append(item.payloads, results)
			}
			return item, nil
		})
	}

	items, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })
	return items, nil
}

func (s *RaceSyncService) latestCoefficients(ctx context.Context) (*coefficient.Snapshot, error) {
	if s.coefficients == nil {
		return nil, nil
	}
	snapshot, found, err := s.coefficients.Latest(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read coefficient snapshot")
	}
	if !found {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *RaceSyncService) latestEurope(ctx context.Context) (*europe.Snapshot, error) {
	if s.europe == nil {
		return nil, nil
	}
	snapshot, found, err := s.europe.Latest(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read european activity snapshot")
	}
	if !found {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *RaceSyncService) leagueSnapshot(generatedAt string, analysis LeagueAnalysis) standing.LeagueSnapshot {
	names := make([]string, 0, len(analysis.Tracked.Teams))
	for _, team := range analysis.Tracked.Teams {
		names = append(names, team.Name)
	}
	return standing.LeagueSnapshot{
		GeneratedAt: generatedAt,
		Source: standing.Source{
			Endpoint: s.cfg.StandingsEndpoint,
			LeagueID: analysis.Table.League.ID,
			Season:   s.cfg.Season,
		},
		League:           analysis.Table.League,
		HighlightTeams:   names,
		Top5:             analysis.Top(),
		HighlightedTeams: analysis.Highlighted,
		MissingTeams:     analysis.Missing,
		Standings:        analysis.Table.Rows,
	}
}
