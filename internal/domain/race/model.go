package race

import (
	"context"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
)

// Entry is one tracked team lifted into the cross-league race.
type Entry struct {
	LeagueID      int64   `json:"leagueId"`
	LeagueName    string  `json:"leagueName"`
	LeagueCountry string  `json:"leagueCountry"`
	LeagueLogo    *string `json:"leagueLogo"`
	LeagueFlag    *string `json:"leagueFlag"`

	TeamID                  int64   `json:"teamId"`
	TeamName                string  `json:"teamName"`
	TeamLogo                *string `json:"teamLogo"`
	Rank                    int     `json:"rank"`
	Points                  int     `json:"points"`
	Played                  int     `json:"played"`
	GoalsDiff               int     `json:"goalsDiff"`
	PointsToFirst           int     `json:"pointsToFirst"`
	PointsDeltaToComparison *int    `json:"pointsDeltaToComparison"`
	ComparisonTeamName      *string `json:"comparisonTeamName"`
	FocusIsFirst            bool    `json:"focusIsFirst"`
	Summary                 string  `json:"summary"`

	Coefficient            float64 `json:"coefficient"`
	IsActiveInEurope       *bool   `json:"isActiveInEurope"`
	EuropeCompetition      *string `json:"europeCompetition"`
	EuropeStage            *string `json:"europeStage"`
	EuropeNextFixtureDate  *string `json:"europeNextFixtureDate"`
	EuropeNextFixtureLabel *string `json:"europeNextFixtureLabel"`
	EuropeStatusNote       *string `json:"europeStatusNote"`
}

// LeagueSummary is the per-league block of the race snapshot.
type LeagueSummary struct {
	LeagueID         int64                     `json:"leagueId"`
	LeagueName       string                    `json:"leagueName"`
	LeagueCountry    string                    `json:"leagueCountry"`
	LeagueLogo       *string                   `json:"leagueLogo"`
	LeagueFlag       *string                   `json:"leagueFlag"`
	LeagueUpdatedAt  *string                   `json:"leagueUpdatedAt"`
	FilePath         string                    `json:"filePath"`
	Top5             []standing.Row            `json:"top5"`
	HighlightedTeams []standing.HighlightedRow `json:"highlightedTeams"`
	MissingTeams     []string                  `json:"missingTeams"`
}

// CoefficientsInfo records where coefficients came from and which teams
// fell back to 0.
type CoefficientsInfo struct {
	Source        string   `json:"source"`
	GeneratedAt   *string  `json:"generatedAt"`
	MatchedTeams  int      `json:"matchedTeams"`
	FallbackTeams []string `json:"fallbackTeams"`
}

// Orderings lists team names in each derived order.
type Orderings struct {
	RankPriority []string `json:"rankPriority"`
	Coefficient  []string `json:"coefficient"`
}

// Snapshot is written to race.json.
type Snapshot struct {
	GeneratedAt        string            `json:"generatedAt"`
	Season             int               `json:"season"`
	Coefficients       *CoefficientsInfo `json:"coefficients,omitempty"`
	Leagues            []LeagueSummary   `json:"leagues"`
	Race               []Entry           `json:"race"`
	Orderings          *Orderings        `json:"orderings,omitempty"`
	BestDomesticLeader *Entry            `json:"bestDomesticLeader"`
}

// TrackedTeam is a club configured as part of the race.
type TrackedTeam struct {
	Name    string   `json:"name" validate:"required"`
	TeamID  int64    `json:"teamId,omitempty" validate:"gte=0"`
	Aliases []string `json:"aliases,omitempty" validate:"dive,required"`
}

// TrackedLeague groups the tracked teams of one domestic league.
type TrackedLeague struct {
	LeagueID int64         `json:"leagueId" validate:"required,gt=0"`
	Name     string        `json:"name"`
	Teams    []TrackedTeam `json:"teams" validate:"required,min=1,dive"`
}

// Tracking is the versioned roster: tracked leagues plus the manual order
// used to split equal coefficients.
type Tracking struct {
	Leagues  []TrackedLeague `json:"leagues" validate:"required,min=1,dive"`
	TieBreak []string        `json:"tieBreak" validate:"dive,required"`
}

// Repository reads the race snapshot produced by the standings job.
type Repository interface {
	Latest(ctx context.Context) (Snapshot, error)
	Location() string
}
