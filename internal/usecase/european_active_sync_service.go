package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/europe"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

type EuropeanActiveSyncConfig struct {
	Season           int
	CompetitionIDs   []int64
	ToDate           string
	Timezone         string
	FixturesEndpoint string
	MaxParallel      int
}

type EuropeanActiveSyncResult struct {
	RunID    string                   `json:"run_id"`
	Summary  europe.Summary           `json:"summary"`
	Warnings []PartialCoverageWarning `json:"-"`
}

type EuropeanActiveSyncService struct {
	provider FootballProvider
	races    race.Repository
	writer   SnapshotWriter
	cfg      EuropeanActiveSyncConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewEuropeanActiveSyncService(
	provider FootballProvider,
	races race.Repository,
	writer SnapshotWriter,
	cfg EuropeanActiveSyncConfig,
	logger *logging.Logger,
) *EuropeanActiveSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if len(cfg.CompetitionIDs) == 0 {
		cfg.CompetitionIDs = []int64{2, 3, 848}
	}
	if strings.TrimSpace(cfg.Timezone) == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}

	return &EuropeanActiveSyncService{
		provider: provider,
		races:    races,
		writer:   writer,
		cfg:      cfg,
		logger:   logger.Named("european_active_sync"),
		now:      time.Now,
	}
}

type competitionFetch struct {
	index int
	item  europe.CompetitionFixtures
}

// Run fetches continental fixtures from today through ToDate and writes
// the activity of every race team to european-active-teams.json.
func (s *EuropeanActiveSyncService) Run(ctx context.Context, runID string) (result EuropeanActiveSyncResult, err error) {
	ctx, run := beginJob(ctx, s.logger, "european-active", runID, attribute.Int("competitions", len(s.cfg.CompetitionIDs)))
	defer func() {
		err = run.finish(ctx, err,
			"tracked_teams", result.Summary.TrackedTeams,
			"active_teams", result.Summary.ActiveTeams,
		)
	}()
	result.RunID = runID

	now := s.now()
	from := now.UTC().Format(fixture.DateLayout)
	to, err := time.Parse(fixture.DateLayout, strings.TrimSpace(s.cfg.ToDate))
	if err != nil {
		return result, &ConfigurationError{Key: "EUROPE_ACTIVE_TO_DATE", Reason: "expected YYYY-MM-DD"}
	}
	toDate := to.Format(fixture.DateLayout)
	if toDate < from {
		toDate = from
	}

	snapshot, err := s.races.Latest(ctx)
	if err != nil {
		return result, errors.Wrapf(err, "read race snapshot %s", s.races.Location())
	}
	season := s.cfg.Season
	if season <= 0 {
		season = snapshot.Season
	}

	competitions, err := s.fetchCompetitions(ctx, season, from, toDate)
	if err != nil {
		return result, err
	}

	teams := make([]TrackedTeamRef, 0, len(snapshot.Race))
	for _, entry := range snapshot.Race {
		teams = append(teams, TrackedTeamRef{
			LeagueID: entry.LeagueID,
			TeamID:   entry.TeamID,
			TeamName: entry.TeamName,
			TeamLogo: entry.TeamLogo,
		})
	}
	statuses, summaries := ResolveEuropeanActivity(competitions, teams, now)

	for _, summary := range summaries {
		if summary.MatchedFixtures > 0 {
			continue
		}
		w := PartialCoverageWarning{Kind: CoverageCompetitionNoMatches, Subject: summary.LeagueName, Scope: "european-active"}
		result.Warnings = append(result.Warnings, w)
		run.warn(ctx, w, "competition_id", summary.LeagueID)
	}

	result.Summary = europe.Summary{TrackedTeams: len(statuses)}
	for _, status := range statuses {
		if status.IsActiveInEurope {
			result.Summary.ActiveTeams++
		}
	}

	out := europe.Snapshot{
		GeneratedAt: formatInstant(now),
		Source: europe.Source{
			Endpoint:        s.cfg.FixturesEndpoint,
			RaceSnapshotURL: s.races.Location(),
			Season:          season,
			Timezone:        s.cfg.Timezone,
			From:            from,
			To:              toDate,
			CompetitionIDs:  s.cfg.CompetitionIDs,
		},
		Competitions: summaries,
		Summary:      result.Summary,
		Teams:        statuses,
	}
	if err := s.writer.WriteAll(ctx, []Artifact{{Path: EuropeSnapshotPath, Payload: out}}); err != nil {
		return result, errors.Wrap(err, "write european activity snapshot")
	}
	return result, nil
}

func (s *EuropeanActiveSyncService) fetchCompetitions(ctx context.Context, season int, from, to string) ([]europe.CompetitionFixtures, error) {
	p := pool.NewWithResults[competitionFetch]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(s.cfg.MaxParallel)

	for i, leagueID := range s.cfg.CompetitionIDs {
		i, leagueID := i, leagueID
		p.Go(func(ctx context.Context) (competitionFetch, error) {
			ctx, span := startChildSpan(ctx, "european.competition", attribute.Int64("league_id", leagueID))
			defer span.End()

			fixtures, _, err := s.provider.FetchFixtures(ctx, fixture.Query{
				LeagueID: leagueID,
				Season:   season,
				From:     from,
				To:       to,
				Timezone: s.cfg.Timezone,
			})
			if err != nil {
				recordSpanError(span, err)
				return competitionFetch{}, errors.Wrapf(err, "fetch fixtures competition=%d", leagueID)
			}
			return competitionFetch{index: i, item: europe.CompetitionFixtures{LeagueID: leagueID, Fixtures: fixtures}}, nil
		})
	}

	items, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })

	out := make([]europe.CompetitionFixtures, 0, len(items))
	for _, item := range items {
		out = append(out, item.item)
	}
	return out, nil
}
