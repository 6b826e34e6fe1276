package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/europe"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/rawdata"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
	coefficientmock "github.com/riskibarqy/ucl-replacement-race/internal/mocks/domain/coefficient"
	europemock "github.com/riskibarqy/ucl-replacement-race/internal/mocks/domain/europe"
	rawdatamock "github.com/riskibarqy/ucl-replacement-race/internal/mocks/domain/rawdata"
)

func raceSyncProvider() *fakeFootballProvider {
	return &fakeFootballProvider{
		standings: map[int64]standing.Table{
			179: standingTable(179, "Premiership",
				standing.Row{TeamID: 247, TeamName: "Celtic", Points: 60},
				standing.Row{TeamID: 257, TeamName: "Rangers", Points: 55},
			),
			197: standingTable(197, "Super League 1",
				standing.Row{TeamID: 553, TeamName: "Olympiakos Piraeus", Points: 58},
				standing.Row{TeamID: 619, TeamName: "PAOK", Points: 57},
			),
		},
	}
}

func raceSyncConfig() RaceSyncConfig {
	return RaceSyncConfig{
		Season: 2025,
		Leagues: []race.TrackedLeague{
			{LeagueID: 197, Teams: []race.TrackedTeam{{Name: "Olympiakos Piraeus", Aliases: []string{"Olympiacos"}}, {Name: "PAOK"}}},
			{LeagueID: 179, Teams: []race.TrackedTeam{{Name: "Rangers"}, {Name: "Hibernian"}}},
		},
		TieBreak:          []string{"Olympiakos Piraeus"},
		StandingsEndpoint: "https://v3.football.api-sports.io/standings",
	}
}

func TestRaceSyncService_WritesLeagueAndRaceSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	coefficients := coefficientmock.NewRepository(t)
	europeRepo := europemock.NewRepository(t)
	coefficients.On("Latest", mock.Anything).Return(coefficient.Snapshot{
		GeneratedAt: "2026-02-25T06:00:00.000Z",
		Clubs: []coefficient.Entry{
			{TeamName: "Olympiacos", Coefficient: 70.25},
			{TeamName: "PAOK", Coefficient: 55},
			{TeamName: "Rangers", Coefficient: 55},
		},
	}, true, nil).Once()
	europeRepo.On("Latest", mock.Anything).Return(europe.Snapshot{}, false, nil).Once()

	writer := &fakeSnapshotWriter{}
	svc := NewRaceSyncService(raceSyncProvider(), coefficients, europeRepo, nil, writer, raceSyncConfig(), testLogger)
	svc.now = func() time.Time { return time.Date(2026, time.February, 26, 10, 0, 0, 0, time.UTC) }

	result, err := svc.Run(ctx, "run-standings")
	require.NoError(t, err)
	require.Equal(t, 2, result.Leagues)
	require.Equal(t, 3, result.Teams)
	require.Equal(t, 0, result.Archived)

	kinds := map[string]int{}
	for _, w := range result.Warnings {
		kinds[w.Kind]++
	}
	require.Equal(t, 1, kinds[CoverageTeamNotInStandings])
	require.Equal(t, 1, kinds[CoverageEuropeSnapshotMissing])

	rawRace, ok := writer.get(RaceSnapshotPath)
	require.True(t, ok)
	snapshot := rawRace.(race.Snapshot)
	require.Equal(t, "2026-02-26T10:00:00.000Z", snapshot.GeneratedAt)
	require.Equal(t, int64(197), snapshot.Leagues[0].LeagueID, "leagues keep configured order")
	require.Equal(t, "leagues/197.json", snapshot.Leagues[0].FilePath)
	require.Equal(t, []string{"Hibernian"}, snapshot.Leagues[1].MissingTeams)
	require.Equal(t, []string{"Olympiakos Piraeus", "PAOK", "Rangers"}, snapshot.Orderings.Coefficient)
	require.Equal(t, "Olympiakos Piraeus", snapshot.BestDomesticLeader.TeamName)
	require.Equal(t, 3, snapshot.Coefficients.MatchedTeams)

	rawLeague, ok := writer.get("leagues/179.json")
	require.True(t, ok)
	league := rawLeague.(standing.LeagueSnapshot)
	require.Equal(t, []string{"Rangers", "Hibernian"}, league.HighlightTeams)
	require.Len(t, league.Standings, 2)
	require.False(t, league.Standings[0].IsHighlighted)
	require.True(t, league.Standings[1].IsHighlighted)
	require.NotNil(t, league.Standings[1].Coefficient)
	require.Equal(t, "https://v3.football.api-sports.io/standings", league.Source.Endpoint)
}

func TestRaceSyncService_AbortsOnLeagueFailure(t *testing.T) {
	t.Parallel()

	provider := raceSyncProvider()
	provider.errs = map[int64]error{179: NewUpstreamRequestError("https://api/standings?league=179", 429, []byte("slow down"))}
	writer := &fakeSnapshotWriter{}
	svc := NewRaceSyncService(provider, nil, nil, nil, writer, raceSyncConfig(), testLogger)

	_, err := svc.Run(context.Background(), "run-fail")
	var upstream *UpstreamRequestError
	if !errors.As(err, &upstream) || upstream.StatusCode != 429 {
		t.Fatalf("expected upstream request error, got %v", err)
	}
	if _, ok := writer.get(RaceSnapshotPath); ok {
		t.Fatalf("race.json must not be written when a league fails")
	}
}

func TestRaceSyncService_ArchivesStandingsAndResults(t *testing.T) {
	t.Parallel()

	archive := rawdatamock.NewRepository(t)
	archive.
		On("Archive", mock.Anything, mock.MatchedBy(func(items []rawdata.Payload) bool {
			if len(items) != 4 {
				return false
			}
			counts := map[string]int{}
			for _, item := range items {
				if item.RunID != "run-archive" {
					return false
				}
				counts[item.EntityType]++
			}
			return counts[rawdata.EntityStandings] == 2 && counts[rawdata.EntityResults] == 2
		})).
		Return(nil).
		Once()

	provider := raceSyncProvider()
	cfg := raceSyncConfig()
	cfg.ResultsLimit = 10
	svc := NewRaceSyncService(provider, nil, nil, archive, &fakeSnapshotWriter{}, cfg, testLogger)

	result, err := svc.Run(context.Background(), "run-archive")
	require.NoError(t, err)
	require.Equal(t, 4, result.Archived)

	for _, q := range provider.recordedQueries() {
		require.Equal(t, 10, q.Last)
		require.Equal(t, fixture.StatusFullTime, q.Status)
	}
}

func TestRaceSyncService_RejectsEmptyTracking(t *testing.T) {
	t.Parallel()

	svc := NewRaceSyncService(raceSyncProvider(), nil, nil, nil, &fakeSnapshotWriter{}, RaceSyncConfig{Season: 2025}, testLogger)
	_, err := svc.Run(context.Background(), "run-empty")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "LEAGUE_IDS" {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
