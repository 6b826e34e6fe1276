package usecase

import (
	"fmt"
	"strconv"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/namematch"
)

const topRows = 5

// LeagueAnalysis is one normalized table with the tracked teams picked out.
type LeagueAnalysis struct {
	Tracked     race.TrackedLeague
	Table       standing.Table
	Highlighted []standing.HighlightedRow
	// TrackedTeams maps each highlighted team id to its configuration.
	TrackedTeams map[int64]race.TrackedTeam
	Missing      []string
}

// Top returns up to five leading rows.
func (a LeagueAnalysis) Top() []standing.Row {
	n := len(a.Table.Rows)
	if n > topRows {
		n = topRows
	}
	out := make([]standing.Row, n)
	copy(out, a.Table.Rows[:n])
	return out
}

// AnalyzeLeague marks tracked teams in table and computes their comparison
// against the leader, or the runner-up when the team leads. Tracked teams
// are matched by configured id first, then by normalized name; unmatched
// names are reported as missing.
func AnalyzeLeague(table standing.Table, tracked race.TrackedLeague) LeagueAnalysis {
	rows := make([]standing.Row, len(table.Rows))
	copy(rows, table.Rows)
	table.Rows = rows

	analysis := LeagueAnalysis{
		Tracked:      tracked,
		Table:        table,
		Highlighted:  []standing.HighlightedRow{},
		TrackedTeams: make(map[int64]race.TrackedTeam, len(tracked.Teams)),
		Missing:      []string{},
	}

	byID := make(map[int64]int, len(rows))
	byName := make(map[string]int, len(rows))
	for i, row := range rows {
		byID[row.TeamID] = i
		if key := namematch.Normalize(row.TeamName); key != "" {
			if _, exists := byName[key]; !exists {
				byName[key] = i
			}
		}
	}

	matched := make(map[int]bool, len(tracked.Teams))
	for _, team := range tracked.Teams {
		idx, ok := -1, false
		if team.TeamID > 0 {
			idx, ok = byID[team.TeamID]
		}
		if !ok {
			idx, ok = byName[namematch.Normalize(team.Name)]
		}
		if !ok || matched[idx] {
			if !ok {
				analysis.Missing = append(analysis.Missing, team.Name)
			}
			continue
		}
		matched[idx] = true
		rows[idx].IsHighlighted = true
		analysis.TrackedTeams[rows[idx].TeamID] = team
	}

	for i := range rows {
		if rows[i].IsHighlighted {
			analysis.Highlighted = append(analysis.Highlighted, highlight(rows, i, table.League.Name))
		}
	}
	return analysis
}

func highlight(rows []standing.Row, idx int, leagueName string) standing.HighlightedRow {
	row := rows[idx]
	leader := rows[0]
	out := standing.HighlightedRow{
		Row:          row,
		FocusIsFirst: row.Rank == 1,
	}

	if !out.FocusIsFirst {
		out.PointsToFirst = max(leader.Points-row.Points, 0)
	}

	var comparison *standing.Row
	switch {
	case !out.FocusIsFirst:
		comparison = &rows[0]
	case len(rows) > 1:
		comparison = &rows[1]
	}
	if comparison != nil {
		delta := row.Points - comparison.Points
		name := comparison.TeamName
		out.PointsDeltaToComparison = &delta
		out.ComparisonTeamName = &name
	}

	out.Summary = summarize(out, leagueName)
	return out
}

func summarize(row standing.HighlightedRow, leagueName string) string {
	if leagueName == "" {
		leagueName = "the league"
	}
	if row.ComparisonTeamName == nil {
		return fmt.Sprintf("%s top %s with %s.", row.TeamName, leagueName, points(row.Points))
	}

	delta := *row.PointsDeltaToComparison
	rival := *row.ComparisonTeamName
	if row.FocusIsFirst {
		if delta == 0 {
			return fmt.Sprintf("%s top %s, level on %s with %s.", row.TeamName, leagueName, points(row.Points), rival)
		}
		return fmt.Sprintf("%s top %s, %s clear of %s.", row.TeamName, leagueName, points(delta), rival)
	}
	if row.PointsToFirst == 0 {
		return fmt.Sprintf("%s are %s in %s, level on points with leaders %s.", row.TeamName, ordinal(row.Rank), leagueName, rival)
	}
	return fmt.Sprintf("%s are %s in %s, %s behind leaders %s.", row.TeamName, ordinal(row.Rank), leagueName, points(row.PointsToFirst), rival)
}

func points(n int) string {
	if n == 1 || n == -1 {
		return strconv.Itoa(n) + " point"
	}
	return strconv.Itoa(n) + " points"
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
