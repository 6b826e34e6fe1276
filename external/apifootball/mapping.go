package apifootball

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

const maxFormLength = 5

// NormalizeStandings maps the first table of the first league in the
// response. Ranks are sorted and renumbered 1..n when the provider sends
// gaps or duplicates.
func NormalizeStandings(items []standingsItem, source string) (standing.Table, error) {
	if len(items) == 0 {
		return standing.Table{}, &usecase.SchemaViolationError{Source: source, Field: "response[0]"}
	}
	league := items[0].League
	if league == nil {
		return standing.Table{}, &usecase.SchemaViolationError{Source: source, Field: "response[0].league"}
	}
	if len(league.Standings) == 0 || league.Standings[0] == nil {
		return standing.Table{}, &usecase.SchemaViolationError{Source: source, Field: "response[0].league.standings[0]"}
	}

	rows := make([]standing.Row, 0, len(league.Standings[0]))
	var updatedAt *string
	for _, item := range league.Standings[0] {
		row := mapStanding(item)
		if updatedAt == nil && row.UpdatedAt != nil {
			updatedAt = row.UpdatedAt
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rank < rows[j].Rank
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return standing.Table{
		League: standing.League{
			ID:        league.ID,
			Name:      league.Name,
			Country:   league.Country,
			Logo:      nonEmpty(league.Logo),
			Flag:      nonEmpty(league.Flag),
			Season:    league.Season,
			UpdatedAt: updatedAt,
		},
		Rows: rows,
	}, nil
}

func mapStanding(item standingItem) standing.Row {
	row := standing.Row{
		Rank:      item.Rank,
		TeamName:  strings.TrimSpace(deref(item.Team.Name)),
		TeamLogo:  nonEmpty(item.Team.Logo),
		Points:    item.Points,
		Form:      normalizeForm(item.Form),
		UpdatedAt: nonEmpty(item.Update),
	}
	if item.Team.ID != nil {
		row.TeamID = *item.Team.ID
	}
	if item.All.Played != nil {
		row.Played = *item.All.Played
	}
	if item.GoalsDiff != nil {
		row.GoalsDiff = *item.GoalsDiff
	}
	return row
}

func normalizeForm(raw *string) *string {
	if raw == nil {
		return nil
	}
	form := strings.ToUpper(strings.TrimSpace(*raw))
	if form == "" {
		return nil
	}
	if utf8.RuneCountInString(form) > maxFormLength {
		form = string([]rune(form)[:maxFormLength])
	}
	return &form
}

// NormalizeFixtures maps every fixture. Unparsable dates leave Date zero
// and non-numeric goals leave the goal pointer nil.
func NormalizeFixtures(items []fixtureItem) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		out = append(out, mapFixture(item))
	}
	return out
}

func mapFixture(item fixtureItem) fixture.Fixture {
	f := fixture.Fixture{
		ID:          item.Fixture.ID,
		RawDate:     strings.TrimSpace(deref(item.Fixture.Date)),
		StatusShort: strings.TrimSpace(deref(item.Fixture.Status.Short)),
		StatusLong:  strings.TrimSpace(deref(item.Fixture.Status.Long)),
		LeagueID:    item.League.ID,
		LeagueName:  strings.TrimSpace(item.League.Name),
		Season:      item.League.Season,
		Round:       item.League.Round,
		Home:        mapTeam(item.Teams.Home),
		Away:        mapTeam(item.Teams.Away),
		HomeGoals:   parseGoals(item.Goals.Home),
		AwayGoals:   parseGoals(item.Goals.Away),
	}
	if parsed, ok := ParseDate(f.RawDate); ok {
		f.Date = parsed
	}
	return f
}

func mapTeam(item teamItem) fixture.TeamRef {
	return fixture.TeamRef{
		ID:   item.ID,
		Name: strings.TrimSpace(deref(item.Name)),
		Logo: nonEmpty(item.Logo),
	}
}

// ParseDate accepts the provider's RFC 3339 timestamps with or without
// fractional seconds.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// parseGoals accepts only finite integral numbers.
func parseGoals(raw any) *int {
	v, ok := raw.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return nil
	}
	goals := int(v)
	return &goals
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func nonEmpty(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
