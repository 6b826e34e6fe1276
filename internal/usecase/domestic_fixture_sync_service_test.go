package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	racemock "github.com/riskibarqy/ucl-replacement-race/internal/mocks/domain/race"
)

func trackedRace() race.Snapshot {
	return race.Snapshot{
		Season: 2025,
		Race: []race.Entry{
			{LeagueID: 179, TeamID: 247, TeamName: "Celtic", Rank: 1},
			{LeagueID: 179, TeamID: 257, TeamName: "Rangers", Rank: 2},
			{LeagueID: 197, TeamID: 553, TeamName: "Olympiakos Piraeus", Rank: 1},
		},
	}
}

func TestDomesticFixtureSyncService_ResolvesWindows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.February, 26, 10, 0, 0, 0, time.UTC)
	played := domesticFixture(100, time.Date(2026, time.February, 21, 15, 0, 0, 0, time.UTC), 257, 247)
	played.StatusShort = fixture.StatusFullTime
	played.HomeGoals = intPtr(2)
	played.AwayGoals = intPtr(1)
	played.Home.Name = "Rangers"
	played.Away.Name = "Celtic"

	provider := &fakeFootballProvider{fixtures: map[int64][]fixture.Fixture{
		179: {
			played,
			domesticFixture(101, time.Date(2026, time.February, 28, 17, 30, 0, 0, time.UTC), 247, 300),
		},
		197: {},
	}}

	races := racemock.NewRepository(t)
	races.On("Latest", mock.Anything).Return(trackedRace(), nil).Once()
	races.On("Location").Return("data/race.json")

	writer := &fakeSnapshotWriter{}
	svc := NewDomesticFixtureSyncService(provider, races, writer, DomesticFixtureSyncConfig{
		Timezone:         "UTC",
		WindowTimezone:   "UTC",
		FixturesEndpoint: "https://v3.football.api-sports.io/fixtures",
		MaxWorkers:       2,
	}, testLogger)
	svc.now = func() time.Time { return now }

	result, err := svc.Run(context.Background(), "run-domestic")
	if err != nil {
		t.Fatalf("run domestic fixtures: %v", err)
	}
	want := fixture.DomesticCoverage{TrackedTeams: 3, CurrentWeekResolved: 1, LastWeekResolved: 2}
	if result.Coverage != want {
		t.Fatalf("unexpected coverage: got=%+v want=%+v", result.Coverage, want)
	}

	raw, ok := writer.get(DomesticSnapshotPath)
	if !ok {
		t.Fatalf("domestic-fixtures.json not written")
	}
	snapshot := raw.(fixture.DomesticSnapshot)
	if snapshot.Windows.Current.From != "2026-02-23" || snapshot.Windows.Last.To != "2026-02-22" {
		t.Fatalf("unexpected windows: %+v", snapshot.Windows)
	}
	if snapshot.Source.Season != 2025 || snapshot.Source.LeaguesFetched != 2 || snapshot.Source.RaceSnapshotURL != "data/race.json" {
		t.Fatalf("unexpected source: %+v", snapshot.Source)
	}

	celtic := snapshot.Teams["Celtic"]
	if celtic.CurrentWeek == nil || celtic.CurrentWeek.FixtureID != 101 || celtic.CurrentWeek.Venue != fixture.VenueHome {
		t.Fatalf("unexpected celtic current week: %+v", celtic.CurrentWeek)
	}
	if celtic.LastWeek == nil || celtic.LastWeek.Result == nil || *celtic.LastWeek.Result != "1-2 L" {
		t.Fatalf("unexpected celtic last week: %+v", celtic.LastWeek)
	}
	rangers := snapshot.Teams["Rangers"]
	if rangers.CurrentWeek != nil || rangers.LastWeek == nil || *rangers.LastWeek.Result != "2-1 W" {
		t.Fatalf("unexpected rangers fixtures: %+v", rangers)
	}
	if olympiakos := snapshot.Teams["Olympiakos Piraeus"]; olympiakos.CurrentWeek != nil || olympiakos.LastWeek != nil {
		t.Fatalf("expected empty olympiakos fixtures: %+v", olympiakos)
	}

	queries := provider.recordedQueries()
	if len(queries) != 2 {
		t.Fatalf("expected one fetch per league, got %d", len(queries))
	}
	for _, q := range queries {
		if q.From != "2026-02-16" || q.To != "2026-03-01" || q.Season != 2025 {
			t.Fatalf("unexpected query: %+v", q)
		}
	}
}

func TestDomesticFixtureSyncService_Failures(t *testing.T) {
	t.Parallel()

	t.Run("race snapshot unavailable", func(t *testing.T) {
		t.Parallel()
		races := racemock.NewRepository(t)
		races.On("Latest", mock.Anything).Return(race.Snapshot{}, ErrNotFound).Once()
		races.On("Location").Return("https://example.test/data/race.json")

		svc := NewDomesticFixtureSyncService(&fakeFootballProvider{}, races, &fakeSnapshotWriter{}, DomesticFixtureSyncConfig{Timezone: "UTC"}, testLogger)
		if _, err := svc.Run(context.Background(), "run-missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("invalid timezone", func(t *testing.T) {
		t.Parallel()
		svc := NewDomesticFixtureSyncService(&fakeFootballProvider{}, racemock.NewRepository(t), &fakeSnapshotWriter{}, DomesticFixtureSyncConfig{Timezone: "Mars/Olympus"}, testLogger)
		var cfgErr *ConfigurationError
		if _, err := svc.Run(context.Background(), "run-tz"); !errors.As(err, &cfgErr) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	t.Run("league fetch fails", func(t *testing.T) {
		t.Parallel()
		races := racemock.NewRepository(t)
		races.On("Latest", mock.Anything).Return(trackedRace(), nil).Once()

		provider := &fakeFootballProvider{errs: map[int64]error{197: &UpstreamAPIError{URL: "https://api/fixtures", Messages: []string{"rate limit"}}}}
		writer := &fakeSnapshotWriter{}
		svc := NewDomesticFixtureSyncService(provider, races, writer, DomesticFixtureSyncConfig{Timezone: "UTC"}, testLogger)
		var apiErr *UpstreamAPIError
		if _, err := svc.Run(context.Background(), "run-fail"); !errors.As(err, &apiErr) {
			t.Fatalf("expected upstream api error, got %v", err)
		}
		if _, ok := writer.get(DomesticSnapshotPath); ok {
			t.Fatalf("nothing should be written")
		}
	})
}
