package europe

import (
	"context"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
)

type Competition struct {
	LeagueID   int64  `json:"leagueId"`
	LeagueName string `json:"leagueName"`
}

// NextFixture is one upcoming or ongoing continental fixture.
type NextFixture struct {
	FixtureID    int64   `json:"fixtureId"`
	LeagueID     int64   `json:"leagueId"`
	LeagueName   string  `json:"leagueName"`
	FixtureDate  *string `json:"fixtureDate"`
	FixtureLabel string  `json:"fixtureLabel"`
	Stage        *string `json:"stage"`
	OpponentName *string `json:"opponentName"`
	OpponentLogo *string `json:"opponentLogo"`
}

// TeamStatus is the activity record of one tracked team.
type TeamStatus struct {
	TeamID           int64         `json:"teamId"`
	TeamName         string        `json:"teamName"`
	TeamLogo         *string       `json:"teamLogo"`
	IsActiveInEurope bool          `json:"isActiveInEurope"`
	Competitions     []Competition `json:"competitions"`
	NextFixtureDate  *string       `json:"nextFixtureDate"`
	NextFixtureLabel *string       `json:"nextFixtureLabel"`
	NextFixtureStage *string       `json:"nextFixtureStage"`
	NextOpponentName *string       `json:"nextOpponentName"`
	NextOpponentLogo *string       `json:"nextOpponentLogo"`
	NextFixtures     []NextFixture `json:"nextFixtures"`
}

// CompetitionFixtures is the fetched fixture list of one competition.
type CompetitionFixtures struct {
	LeagueID int64
	Fixtures []fixture.Fixture
}

type CompetitionSummary struct {
	LeagueID        int64  `json:"leagueId"`
	LeagueName      string `json:"leagueName"`
	Fixtures        int    `json:"fixtures"`
	MatchedFixtures int    `json:"matchedFixtures"`
}

type Source struct {
	Endpoint        string  `json:"endpoint"`
	RaceSnapshotURL string  `json:"raceSnapshotUrl"`
	Season          int     `json:"season"`
	Timezone        string  `json:"timezone"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	CompetitionIDs  []int64 `json:"competitionIds"`
}

type Summary struct {
	TrackedTeams int `json:"trackedTeams"`
	ActiveTeams  int `json:"activeTeams"`
}

// Snapshot is written to european-active-teams.json.
type Snapshot struct {
	GeneratedAt  string               `json:"generatedAt"`
	Source       Source               `json:"source"`
	Competitions []CompetitionSummary `json:"competitions"`
	Summary      Summary              `json:"summary"`
	Teams        []TeamStatus         `json:"teams"`
}

// Repository reads the last written activity snapshot.
type Repository interface {
	Latest(ctx context.Context) (snapshot Snapshot, found bool, err error)
}
