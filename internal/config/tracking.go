package config

import (
	"os"
	"slices"
	"strconv"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

// DefaultTracking is the built-in roster used when TRACKING_CONFIG_FILE is
// empty. The tie-break list only orders clubs with equal coefficients.
func DefaultTracking() race.Tracking {
	return race.Tracking{
		Leagues: []race.TrackedLeague{
			{LeagueID: 197, Name: "Super League 1", Teams: []race.TrackedTeam{
				{Name: "Olympiakos Piraeus", Aliases: []string{"Olympiacos", "Olympiacos FC"}},
				{Name: "PAOK"},
			}},
			{LeagueID: 179, Name: "Premiership", Teams: []race.TrackedTeam{
				{Name: "Rangers"},
				{Name: "Celtic"},
			}},
			{LeagueID: 119, Name: "Superliga", Teams: []race.TrackedTeam{
				{Name: "FC Copenhagen", Aliases: []string{"FC København", "Copenhagen"}},
				{Name: "FC Midtjylland", Aliases: []string{"Midtjylland"}},
			}},
			{LeagueID: 333, Name: "Premier League", Teams: []race.TrackedTeam{
				{Name: "Shakhtar Donetsk", Aliases: []string{"Shakhtar"}},
			}},
			{LeagueID: 271, Name: "NB I", Teams: []race.TrackedTeam{
				{Name: "Ferencvarosi TC", Aliases: []string{"Ferencváros"}},
			}},
			{LeagueID: 286, Name: "Super Liga", Teams: []race.TrackedTeam{
				{Name: "FK Crvena Zvezda", Aliases: []string{"Crvena Zvezda", "Red Star Belgrade"}},
			}},
			{LeagueID: 210, Name: "HNL", Teams: []race.TrackedTeam{
				{Name: "Dinamo Zagreb", Aliases: []string{"GNK Dinamo"}},
			}},
			{LeagueID: 218, Name: "Bundesliga", Teams: []race.TrackedTeam{
				{Name: "Red Bull Salzburg", Aliases: []string{"Salzburg", "FC Salzburg"}},
			}},
			{LeagueID: 332, Name: "Super Liga", Teams: []race.TrackedTeam{
				{Name: "Slovan Bratislava"},
			}},
		},
		TieBreak: []string{
			"Red Bull Salzburg",
			"FC Copenhagen",
			"Shakhtar Donetsk",
			"Olympiakos Piraeus",
			"Rangers",
			"Celtic",
			"FK Crvena Zvezda",
			"Dinamo Zagreb",
			"Ferencvarosi TC",
			"PAOK",
			"FC Midtjylland",
			"Slovan Bratislava",
		},
	}
}

// LoadTracking reads a JSON roster from path, or returns the built-in one
// when path is empty.
func LoadTracking(path string) (race.Tracking, error) {
	if path == "" {
		return DefaultTracking(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return race.Tracking{}, crerr.Wrapf(err, "read tracking config %s", path)
	}

	var tracking race.Tracking
	if err := sonic.Unmarshal(raw, &tracking); err != nil {
		return race.Tracking{}, &usecase.ConfigurationError{Key: "TRACKING_CONFIG_FILE", Reason: "invalid JSON: " + err.Error()}
	}
	if err := ValidateTracking(tracking); err != nil {
		return race.Tracking{}, err
	}

	return tracking, nil
}

// ValidateTracking checks the roster shape and rejects duplicate leagues.
func ValidateTracking(tracking race.Tracking) error {
	if err := validate.Struct(tracking); err != nil {
		var fieldErrs validator.ValidationErrors
		if crerr.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &usecase.ConfigurationError{
				Key:    "TRACKING_CONFIG_FILE",
				Reason: fieldErrs[0].Namespace() + " failed " + fieldErrs[0].Tag() + " check",
			}
		}
		return crerr.Wrap(err, "validate tracking config")
	}

	seen := make(map[int64]struct{}, len(tracking.Leagues))
	for _, league := range tracking.Leagues {
		if _, ok := seen[league.LeagueID]; ok {
			return &usecase.ConfigurationError{
				Key:    "TRACKING_CONFIG_FILE",
				Reason: "duplicate league " + strconv.FormatInt(league.LeagueID, 10),
			}
		}
		seen[league.LeagueID] = struct{}{}
	}

	return nil
}

// FilterLeagues keeps only the leagues listed in ids, in roster order. An
// empty ids list keeps everything.
func FilterLeagues(tracking race.Tracking, ids []int64) (race.Tracking, error) {
	if len(ids) == 0 {
		return tracking, nil
	}

	out := race.Tracking{TieBreak: tracking.TieBreak}
	for _, league := range tracking.Leagues {
		if slices.Contains(ids, league.LeagueID) {
			out.Leagues = append(out.Leagues, league)
		}
	}
	if len(out.Leagues) == 0 {
		return race.Tracking{}, &usecase.ConfigurationError{Key: "LEAGUE_IDS", Reason: "matches no tracked league"}
	}

	return out, nil
}
