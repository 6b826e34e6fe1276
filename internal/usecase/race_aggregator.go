package usecase

import (
	"sort"
	"strings"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/europe"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/namematch"
)

// TieBreak is the manual order applied to equal coefficients. Listed teams
// precede unlisted ones; unlisted ties fall back to the team name.
type TieBreak struct {
	position map[string]int
}

func NewTieBreak(names []string) TieBreak {
	position := make(map[string]int, len(names))
	for i, name := range names {
		key := namematch.Normalize(name)
		if key == "" {
			continue
		}
		if _, exists := position[key]; !exists {
			position[key] = i
		}
	}
	return TieBreak{position: position}
}

func (t TieBreak) lookup(name string) (int, bool) {
	pos, ok := t.position[namematch.Normalize(name)]
	return pos, ok
}

// CompareCoefficient orders by coefficient descending, then tie-break list
// position, then team name, then team id. It returns a negative number
// when a comes first.
func CompareCoefficient(a, b race.Entry, tieBreak TieBreak) int {
	switch {
	case a.Coefficient > b.Coefficient:
		return -1
	case a.Coefficient < b.Coefficient:
		return 1
	}

	posA, listedA := tieBreak.lookup(a.TeamName)
	posB, listedB := tieBreak.lookup(b.TeamName)
	switch {
	case listedA && listedB && posA != posB:
		return posA - posB
	case listedA && !listedB:
		return -1
	case !listedA && listedB:
		return 1
	}

	if c := strings.Compare(a.TeamName, b.TeamName); c != 0 {
		return c
	}
	switch {
	case a.TeamID < b.TeamID:
		return -1
	case a.TeamID > b.TeamID:
		return 1
	default:
		return 0
	}
}

// CompareRankPriority puts domestic leaders first and applies the
// coefficient chain inside each group.
func CompareRankPriority(a, b race.Entry, tieBreak TieBreak) int {
	leaderA, leaderB := a.Rank == 1, b.Rank == 1
	switch {
	case leaderA && !leaderB:
		return -1
	case !leaderA && leaderB:
		return 1
	}
	return CompareCoefficient(a, b, tieBreak)
}

// SortedBy returns a sorted copy of entries.
func SortedBy(entries []race.Entry, tieBreak TieBreak, cmp func(a, b race.Entry, tieBreak TieBreak) int) []race.Entry {
	out := make([]race.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j], tieBreak) < 0
	})
	return out
}

// BestDomesticLeader is the rank 1 entry with the highest coefficient, or
// nil when no tracked team leads its league.
func BestDomesticLeader(entries []race.Entry, tieBreak TieBreak) *race.Entry {
	var best *race.Entry
	for i := range entries {
		if entries[i].Rank != 1 {
			continue
		}
		if best == nil || CompareCoefficient(entries[i], *best, tieBreak) < 0 {
			candidate := entries[i]
			best = &candidate
		}
	}
	return best
}

func teamNames(entries []race.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.TeamName)
	}
	return out
}

// CoefficientJoin matches highlighted rows against coefficient entries by
// exact normalized name, then configured aliases, then unambiguous word
// containment.
type CoefficientJoin struct {
	index *namematch.Index[coefficient.Entry]
}

func NewCoefficientJoin(clubs []coefficient.Entry) CoefficientJoin {
	return CoefficientJoin{
		index: namematch.NewIndex(clubs, func(c coefficient.Entry) string { return c.TeamName }),
	}
}

func (j CoefficientJoin) Match(row standing.Row, team race.TrackedTeam) (coefficient.Entry, namematch.Kind) {
	aliases := make([]string, 0, len(team.Aliases)+1)
	if team.Name != "" && !namematch.Equal(team.Name, row.TeamName) {
		aliases = append(aliases, team.Name)
	}
	aliases = append(aliases, team.Aliases...)
	return j.index.Lookup(row.TeamName, aliases...)
}

// ApplyCoefficients sets Coefficient on every highlighted row that matches
// and returns the names that did not.
func ApplyCoefficients(leagues []LeagueAnalysis, join CoefficientJoin) (matched int, fallback []string) {
	fallback = []string{}
	for li := range leagues {
		league := &leagues[li]
		for hi := range league.Highlighted {
			row := &league.Highlighted[hi]
			entry, kind := join.Match(row.Row, league.TrackedTeams[row.TeamID])
			if kind == namematch.KindNone {
				row.Coefficient = nil
				fallback = append(fallback, row.TeamName)
				continue
			}
			value := entry.Coefficient
			row.Coefficient = &value
			matched++
		}
	}
	return matched, fallback
}

// ApplyEuropeanStatus copies the activity of each highlighted team, matched
// by id then by normalized name. Teams without a status keep nil fields.
func ApplyEuropeanStatus(leagues []LeagueAnalysis, statuses []europe.TeamStatus) {
	byID := make(map[int64]europe.TeamStatus, len(statuses))
	byName := make(map[string]europe.TeamStatus, len(statuses))
	for _, s := range statuses {
		byID[s.TeamID] = s
		byName[namematch.Normalize(s.TeamName)] = s
	}

	for li := range leagues {
		for hi := range leagues[li].Highlighted {
			row := &leagues[li].Highlighted[hi]
			status, ok := byID[row.TeamID]
			if !ok {
				status, ok = byName[namematch.Normalize(row.TeamName)]
			}
			if !ok {
				continue
			}
			applyStatus(&row.Row, status)
		}
	}
}

func applyStatus(row *standing.Row, status europe.TeamStatus) {
	active := status.IsActiveInEurope
	row.IsActiveInEurope = &active
	row.EuropeNextFixtureDate = status.NextFixtureDate
	row.EuropeNextFixtureLabel = status.NextFixtureLabel
	row.EuropeStage = status.NextFixtureStage

	if len(status.Competitions) > 0 {
		names := make([]string, 0, len(status.Competitions))
		for _, c := range status.Competitions {
			names = append(names, c.LeagueName)
		}
		competition := strings.Join(names, ", ")
		row.EuropeCompetition = &competition
	}

	var note string
	switch {
	case active && status.NextFixtureLabel != nil:
		note = "Next: " + *status.NextFixtureLabel
	case active:
		note = "Still active in Europe"
	case len(status.Competitions) > 0:
		note = "No remaining European fixtures"
	default:
		note = "Not in a European competition"
	}
	row.EuropeStatusNote = &note
}

// BuildRaceEntries lifts every highlighted row into the race, one entry
// per team id.
func BuildRaceEntries(leagues []LeagueAnalysis) []race.Entry {
	seen := make(map[int64]bool)
	out := make([]race.Entry, 0, len(leagues)*2)
	for _, league := range leagues {
		meta := league.Table.League
		for _, row := range league.Highlighted {
			if seen[row.TeamID] {
				continue
			}
			seen[row.TeamID] = true

			entry := race.Entry{
				LeagueID:                meta.ID,
				LeagueName:              meta.Name,
				LeagueCountry:           meta.Country,
				LeagueLogo:              meta.Logo,
				LeagueFlag:              meta.Flag,
				TeamID:                  row.TeamID,
				TeamName:                row.TeamName,
				TeamLogo:                row.TeamLogo,
				Rank:                    row.Rank,
				Points:                  row.Points,
				Played:                  row.Played,
				GoalsDiff:               row.GoalsDiff,
				PointsToFirst:           row.PointsToFirst,
				PointsDeltaToComparison: row.PointsDeltaToComparison,
				ComparisonTeamName:      row.ComparisonTeamName,
				FocusIsFirst:            row.FocusIsFirst,
				Summary:                 row.Summary,
				IsActiveInEurope:        row.IsActiveInEurope,
				EuropeCompetition:       row.EuropeCompetition,
				EuropeStage:             row.EuropeStage,
				EuropeNextFixtureDate:   row.EuropeNextFixtureDate,
				EuropeNextFixtureLabel:  row.EuropeNextFixtureLabel,
				EuropeStatusNote:        row.EuropeStatusNote,
			}
			if row.Coefficient != nil {
				entry.Coefficient = *row.Coefficient
			}
			out = append(out, entry)
		}
	}
	return out
}

// syncHighlightedIntoStandings mirrors enrichment of highlighted rows back
// into the full table so both views agree.
func syncHighlightedIntoStandings(league *LeagueAnalysis) {
	byID := make(map[int64]standing.Row, len(league.Highlighted))
	for _, row := range league.Highlighted {
		byID[row.TeamID] = row.Row
	}
	for i := range league.Table.Rows {
		if row, ok := byID[league.Table.Rows[i].TeamID]; ok {
			league.Table.Rows[i] = row
		}
	}
}

// RaceInput is everything the aggregator needs for one run.
type RaceInput struct {
	GeneratedAt  string
	Season       int
	Leagues      []LeagueAnalysis
	LeaguePath   func(leagueID int64) string
	Coefficients *coefficient.Snapshot
	Europe       *europe.Snapshot
	TieBreak     TieBreak
}

// AggregateRace enriches the highlighted rows of in.Leagues in place and
// assembles the race snapshot. A nil Coefficients or Europe leaves every
// row at its default and is reported as a warning.
func AggregateRace(in RaceInput) (race.Snapshot, []PartialCoverageWarning) {
	warnings := make([]PartialCoverageWarning, 0)

	var info *race.CoefficientsInfo
	if in.Coefficients != nil {
		matched, fallback := ApplyCoefficients(in.Leagues, NewCoefficientJoin(in.Coefficients.Clubs))
		generatedAt := in.Coefficients.GeneratedAt
		info = &race.CoefficientsInfo{
			Source:        in.Coefficients.Source.Endpoint,
			GeneratedAt:   optionalString(generatedAt),
			MatchedTeams:  matched,
			FallbackTeams: fallback,
		}
		for _, name := range fallback {
			warnings = append(warnings, PartialCoverageWarning{
				Kind:    CoverageCoefficientFallback,
				Subject: name,
				Scope:   "coefficients",
			})
		}
	} else {
		warnings = append(warnings, PartialCoverageWarning{
			Kind:    CoverageCoefficientsMissing,
			Subject: "coefficients.json",
			Scope:   "race",
		})
	}

	if in.Europe != nil {
		ApplyEuropeanStatus(in.Leagues, in.Europe.Teams)
	} else {
		warnings = append(warnings, PartialCoverageWarning{
			Kind:    CoverageEuropeSnapshotMissing,
			Subject: "european-active-teams.json",
			Scope:   "race",
		})
	}

	summaries := make([]race.LeagueSummary, 0, len(in.Leagues))
	for i := range in.Leagues {
		league := &in.Leagues[i]
		syncHighlightedIntoStandings(league)

		meta := league.Table.League
		path := ""
		if in.LeaguePath != nil {
			path = in.LeaguePath(meta.ID)
		}
		highlighted := make([]standing.HighlightedRow, len(league.Highlighted))
		copy(highlighted, league.Highlighted)
		missing := make([]string, len(league.Missing))
		copy(missing, league.Missing)

		summaries = append(summaries, race.LeagueSummary{
			LeagueID:         meta.ID,
			LeagueName:       meta.Name,
			LeagueCountry:    meta.Country,
			LeagueLogo:       meta.Logo,
			LeagueFlag:       meta.Flag,
			LeagueUpdatedAt:  meta.UpdatedAt,
			FilePath:         path,
			Top5:             league.Top(),
			HighlightedTeams: highlighted,
			MissingTeams:     missing,
		})
	}

	entries := BuildRaceEntries(in.Leagues)
	byRank := SortedBy(entries, in.TieBreak, CompareRankPriority)
	byCoefficient := SortedBy(entries, in.TieBreak, CompareCoefficient)

	return race.Snapshot{
		GeneratedAt:  in.GeneratedAt,
		Season:       in.Season,
		Coefficients: info,
		Leagues:      summaries,
		Race:         byRank,
		Orderings: &race.Orderings{
			RankPriority: teamNames(byRank),
			Coefficient:  teamNames(byCoefficient),
		},
		BestDomesticLeader: BestDomesticLeader(entries, in.TieBreak),
	}, warnings
}
