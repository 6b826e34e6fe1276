package standing

// League identifies a domestic competition at fetch time.
type League struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Logo      *string `json:"logo"`
	Flag      *string `json:"flag"`
	Season    int     `json:"season"`
	UpdatedAt *string `json:"updatedAt"`
}

// Row is one team's line in a league table. Nullable fields stay nil when
// the provider omitted them or no enrichment matched.
type Row struct {
	Rank          int     `json:"rank"`
	TeamID        int64   `json:"teamId"`
	TeamName      string  `json:"teamName"`
	TeamLogo      *string `json:"teamLogo"`
	Points        int     `json:"points"`
	Played        int     `json:"played"`
	GoalsDiff     int     `json:"goalsDiff"`
	Form          *string `json:"form"`
	UpdatedAt     *string `json:"updatedAt"`
	IsHighlighted bool    `json:"isHighlighted"`

	Coefficient            *float64 `json:"coefficient"`
	IsActiveInEurope       *bool    `json:"isActiveInEurope"`
	EuropeCompetition      *string  `json:"europeCompetition"`
	EuropeStage            *string  `json:"europeStage"`
	EuropeNextFixtureDate  *string  `json:"europeNextFixtureDate"`
	EuropeNextFixtureLabel *string  `json:"europeNextFixtureLabel"`
	EuropeStatusNote       *string  `json:"europeStatusNote"`
}

// Table is the normalized output of one standings fetch. Rows are ordered
// by rank starting at 1.
type Table struct {
	League League
	Rows   []Row
}

// HighlightedRow adds the comparison against the league leader, or against
// the runner-up when the team itself leads.
type HighlightedRow struct {
	Row
	FocusIsFirst            bool    `json:"focusIsFirst"`
	PointsToFirst           int     `json:"pointsToFirst"`
	PointsDeltaToComparison *int    `json:"pointsDeltaToComparison"`
	ComparisonTeamName      *string `json:"comparisonTeamName"`
	Summary                 string  `json:"summary"`
}

type Source struct {
	Endpoint string `json:"endpoint"`
	LeagueID int64  `json:"leagueId"`
	Season   int    `json:"season"`
}

// LeagueSnapshot is written to leagues/{leagueId}.json.
type LeagueSnapshot struct {
	GeneratedAt      string           `json:"generatedAt"`
	Source           Source           `json:"source"`
	League           League           `json:"league"`
	HighlightTeams   []string         `json:"highlightTeams"`
	Top5             []Row            `json:"top5"`
	HighlightedTeams []HighlightedRow `json:"highlightedTeams"`
	MissingTeams     []string         `json:"missingTeams"`
	Standings        []Row            `json:"standings"`
}
