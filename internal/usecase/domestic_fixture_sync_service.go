package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

type DomesticFixtureSyncConfig struct {
	Season int
	// Timezone is sent upstream and used for kickoff labels.
	Timezone string
	// WindowTimezone is the reference zone of the week windows.
	WindowTimezone   string
	FixturesEndpoint string
	MaxParallel      int
	MaxWorkers       int
}

type DomesticFixtureSyncResult struct {
	RunID    string                   `json:"run_id"`
	Coverage fixture.DomesticCoverage `json:"coverage"`
}

type DomesticFixtureSyncService struct {
	provider FootballProvider
	races    race.Repository
	writer   SnapshotWriter
	cfg      DomesticFixtureSyncConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewDomesticFixtureSyncService(
	provider FootballProvider,
	races race.Repository,
	writer SnapshotWriter,
	cfg DomesticFixtureSyncConfig,
	logger *logging.Logger,
) *DomesticFixtureSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Vienna"
	}
	if cfg.WindowTimezone == "" {
		cfg.WindowTimezone = "UTC"
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}

	return &DomesticFixtureSyncService{
		provider: provider,
		races:    races,
		writer:   writer,
		cfg:      cfg,
		logger:   logger.Named("domestic_fixture_sync"),
		now:      time.Now,
	}
}

type leagueFixtures struct {
	leagueID int64
	fixtures []fixture.Fixture
}

// Run resolves the current and last week fixture of every team in the
// race snapshot and writes domestic-fixtures.json.
func (s *DomesticFixtureSyncService) Run(ctx context.Context, runID string) (result DomesticFixtureSyncResult, err error) {
	ctx, run := beginJob(ctx, s.logger, "domestic-fixtures", runID, attribute.Int("season", s.cfg.Season))
	defer func() {
		err = run.finish(ctx, err,
			"tracked_teams", result.Coverage.TrackedTeams,
			"current_week_resolved", result.Coverage.CurrentWeekResolved,
			"last_week_resolved", result.Coverage.LastWeekResolved,
		)
	}()
	result.RunID = runID

	kickoffLoc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return result, &ConfigurationError{Key: "FIXTURES_TIMEZONE", Reason: err.Error()}
	}
	windowLoc, err := time.LoadLocation(s.cfg.WindowTimezone)
	if err != nil {
		return result, &ConfigurationError{Key: "WINDOW_TIMEZONE", Reason: err.Error()}
	}

	snapshot, err := s.races.Latest(ctx)
	if err != nil {
		return result, errors.Wrapf(err, "read race snapshot %s", s.races.Location())
	}
	season := s.cfg.Season
	if season <= 0 {
		season = snapshot.Season
	}

	windows := ComputeWeekWindows(s.now(), windowLoc)
	byLeague, err := s.fetchLeagues(ctx, uniqueLeagueIDs(snapshot.Race), season, windows)
	if err != nil {
		return result, err
	}

	rows, err := s.resolveTeams(ctx, snapshot.Race, byLeague, windows, kickoffLoc)
	if err != nil {
		return result, err
	}

	teams := make(map[string]fixture.DomesticTeamFixtures, len(rows))
	coverage := fixture.DomesticCoverage{TrackedTeams: len(snapshot.Race)}
	for i, entry := range snapshot.Race {
		row := rows[i]
		if row.CurrentWeek != nil {
			coverage.CurrentWeekResolved++
		}
		if row.LastWeek != nil {
			coverage.LastWeekResolved++
		}
		teams[entry.TeamName] = row
	}
	result.Coverage = coverage

	out := fixture.DomesticSnapshot{
		GeneratedAt: formatInstant(s.now()),
		Source: fixture.DomesticSource{
			Endpoint:        s.cfg.FixturesEndpoint,
			RaceSnapshotURL: s.races.Location(),
			Season:          season,
			Timezone:        s.cfg.Timezone,
			LeaguesFetched:  len(byLeague),
		},
		Windows:  windows,
		Coverage: coverage,
		Teams:    teams,
	}
	if err := s.writer.WriteAll(ctx, []Artifact{{Path: DomesticSnapshotPath, Payload: out}}); err != nil {
		return result, errors.Wrap(err, "write domestic fixtures snapshot")
	}
	return result, nil
}

func uniqueLeagueIDs(entries []race.Entry) []int64 {
	seen := make(map[int64]bool, len(entries))
	out := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if seen[entry.LeagueID] {
			continue
		}
		seen[entry.LeagueID] = true
		out = append(out, entry.LeagueID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// fetchLeagues loads one fixture list per league covering both windows.
func (s *DomesticFixtureSyncService) fetchLeagues(ctx context.Context, leagueIDs []int64, season int, windows fixture.WeekWindows) (map[int64][]fixture.Fixture, error) {
	p := pool.NewWithResults[leagueFixtures]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(s.cfg.MaxParallel)

	for _, leagueID := range leagueIDs {
		leagueID := leagueID
		p.Go(func(ctx context.Context) (leagueFixtures, error) {
			fixtures, _, err := s.provider.FetchFixtures(ctx, fixture.Query{
				LeagueID: leagueID,
				Season:   season,
				From:     windows.Last.From,
				To:       windows.Current.To,
				Timezone: s.cfg.Timezone,
			})
			if err != nil {
				return leagueFixtures{}, errors.Wrapf(err, "fetch fixtures league=%d", leagueID)
			}
			return leagueFixtures{leagueID: leagueID, fixtures: fixtures}, nil
		})
	}

	items, err := p.Wait()
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]fixture.Fixture, len(items))
	for _, item := range items {
		out[item.leagueID] = item.fixtures
	}
	return out, nil
}

// resolveTeams runs window selection per team on a bounded pool. Each
// worker writes only its own slot.
func (s *DomesticFixtureSyncService) resolveTeams(
	ctx context.Context,
	entries []race.Entry,
	byLeague map[int64][]fixture.Fixture,
	windows fixture.WeekWindows,
	kickoffLoc *time.Location,
) ([]fixture.DomesticTeamFixtures, error) {
	rows := make([]fixture.DomesticTeamFixtures, len(entries))
	if len(entries) == 0 {
		return rows, nil
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(entries) {
		workerCount = len(entries)
	}
	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer workers.Release()

	var wg sync.WaitGroup
	for i, entry := range entries {
		i, entry := i, entry
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			fixtures := byLeague[entry.LeagueID]

			var row fixture.DomesticTeamFixtures
			if f, ok := SelectCurrentWeekFixture(fixtures, entry.TeamID, windows); ok {
				row.CurrentWeek = BuildDomesticRow(f, entry.TeamID, kickoffLoc)
			}
			if f, ok := SelectLastWeekFixture(fixtures, entry.TeamID, windows.Last); ok {
				row.LastWeek = BuildDomesticRow(f, entry.TeamID, kickoffLoc)
			}
			rows[i] = row
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, errors.Wrap(err, "submit team to worker pool")
		}
	}
	wg.Wait()

	for i, entry := range entries {
		if rows[i].CurrentWeek == nil {
			s.logger.DebugContext(ctx, "no current week fixture", "team", entry.TeamName, "league_id", entry.LeagueID)
		}
	}
	return rows, nil
}
