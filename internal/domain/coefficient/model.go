package coefficient

import "context"

// Ranking selectors sent with every page query.
const (
	RangeOverall = "OVERALL"
	TypeMenClub  = "MEN_CLUB"
)

// Entry is one club in the coefficient ranking.
type Entry struct {
	Rank                           int      `json:"rank"`
	TeamID                         string   `json:"teamId"`
	TeamName                       string   `json:"teamName"`
	TeamOfficialName               *string  `json:"teamOfficialName"`
	TeamCode                       *string  `json:"teamCode"`
	CountryCode                    *string  `json:"countryCode"`
	CountryName                    *string  `json:"countryName"`
	TeamLogo                       *string  `json:"teamLogo"`
	TeamLogoMedium                 *string  `json:"teamLogoMedium"`
	TeamLogoLarge                  *string  `json:"teamLogoLarge"`
	AssociationID                  *string  `json:"associationId"`
	AssociationLogo                *string  `json:"associationLogo"`
	CompetitionID                  *string  `json:"competitionId"`
	CompetitionName                *string  `json:"competitionName"`
	CompetitionType                *string  `json:"competitionType"`
	Coefficient                    float64  `json:"coefficient"`
	NationalAssociationCoefficient *float64 `json:"nationalAssociationCoefficient"`
	Trend                          *string  `json:"trend"`
	BaseSeasonYear                 *int     `json:"baseSeasonYear"`
	TargetSeasonYear               *int     `json:"targetSeasonYear"`
}

// Config source labels.
const (
	ConfigSourceEnv     = "env"
	ConfigSourceScraped = "scraped"
	ConfigSourceMixed   = "mixed"
)

// APIConfig is what the rankings API needs: a key and a base URL.
type APIConfig struct {
	APIKey     string
	CompAPIURL string
	Source     string
	PageURL    string
}

// PageQuery selects one page of the ranking.
type PageQuery struct {
	SeasonYear       int
	Page             int
	PageSize         int
	Language         string
	CoefficientRange string
	CoefficientType  string
}

// Page is one decoded ranking page. Members keep provider order.
type Page struct {
	RequestURL     string
	Members        []Entry
	TotalElements  *int
	LastUpdateDate *string
}

type Source struct {
	RankingsPageURL  string  `json:"rankingsPageUrl"`
	Endpoint         string  `json:"endpoint"`
	LastRequestURL   string  `json:"lastRequestUrl"`
	ConfigSource     string  `json:"configSource"`
	SeasonYear       int     `json:"seasonYear"`
	CoefficientRange string  `json:"coefficientRange"`
	CoefficientType  string  `json:"coefficientType"`
	Language         string  `json:"language"`
	PageSize         int     `json:"pageSize"`
	RequestedLimit   int     `json:"requestedLimit"`
	TotalAvailable   *int    `json:"totalAvailable"`
	Fetched          int     `json:"fetched"`
	LastUpdateDate   *string `json:"lastUpdateDate"`
}

// Snapshot is written to coefficients.json.
type Snapshot struct {
	GeneratedAt string  `json:"generatedAt"`
	Source      Source  `json:"source"`
	Clubs       []Entry `json:"clubs"`
}

// Repository reads the last written coefficient snapshot. found is false
// when no snapshot exists yet.
type Repository interface {
	Latest(ctx context.Context) (snapshot Snapshot, found bool, err error)
}
