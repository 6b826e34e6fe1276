package fixture

const (
	VenueHome = "home"
	VenueAway = "away"

	// Placeholder shown for unknown opponents and kickoff times.
	Unknown = "TBD"
)

// DomesticRow is one resolved fixture for one team in one window.
type DomesticRow struct {
	FixtureID    int64   `json:"fixtureId"`
	Opponent     string  `json:"opponent"`
	OpponentLogo *string `json:"opponentLogo"`
	Date         *string `json:"date"`
	Kickoff      string  `json:"kickoff"`
	Venue        string  `json:"venue"`
	Result       *string `json:"result"`
	StatusShort  *string `json:"statusShort"`
	StatusLong   *string `json:"statusLong"`
}

// DomesticTeamFixtures holds the representative fixture per window; nil
// means no fixture fell in the window.
type DomesticTeamFixtures struct {
	CurrentWeek *DomesticRow `json:"currentWeek"`
	LastWeek    *DomesticRow `json:"lastWeek"`
}

type DomesticSource struct {
	Endpoint        string `json:"endpoint"`
	RaceSnapshotURL string `json:"raceSnapshotUrl"`
	Season          int    `json:"season"`
	Timezone        string `json:"timezone"`
	LeaguesFetched  int    `json:"leaguesFetched"`
}

type DomesticCoverage struct {
	TrackedTeams        int `json:"trackedTeams"`
	CurrentWeekResolved int `json:"currentWeekResolved"`
	LastWeekResolved    int `json:"lastWeekResolved"`
}

// DomesticSnapshot is written to domestic-fixtures.json.
type DomesticSnapshot struct {
	GeneratedAt string                          `json:"generatedAt"`
	Source      DomesticSource                  `json:"source"`
	Windows     WeekWindows                     `json:"windows"`
	Coverage    DomesticCoverage                `json:"coverage"`
	Teams       map[string]DomesticTeamFixtures `json:"teams"`
}
