package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/europe"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/namematch"
)

const maxNextFixtures = 2

// TrackedTeamRef is the identity of one tracked team as read from the race
// snapshot.
type TrackedTeamRef struct {
	LeagueID int64
	TeamID   int64
	TeamName string
	TeamLogo *string
}

// IsFixtureStillActive treats live codes as active and terminal codes as
// inactive. Any other code is active only when dated at or after now.
func IsFixtureStillActive(f fixture.Fixture, now time.Time) bool {
	switch {
	case fixture.IsLiveStatus(f.StatusShort):
		return true
	case fixture.IsTerminalStatus(f.StatusShort):
		return false
	case !f.HasDate():
		return false
	default:
		return !f.Date.Before(now)
	}
}

type trackedLookup struct {
	byID   map[int64]int
	byName map[string]int
}

func newTrackedLookup(teams []TrackedTeamRef) trackedLookup {
	lookup := trackedLookup{
		byID:   make(map[int64]int, len(teams)),
		byName: make(map[string]int, len(teams)),
	}
	for i, team := range teams {
		if _, exists := lookup.byID[team.TeamID]; !exists {
			lookup.byID[team.TeamID] = i
		}
		if key := namematch.Normalize(team.TeamName); key != "" {
			if _, exists := lookup.byName[key]; !exists {
				lookup.byName[key] = i
			}
		}
	}
	return lookup
}

// match tries the provider id first and the normalized name second.
func (l trackedLookup) match(side fixture.TeamRef) (int, bool) {
	if side.ID != nil {
		if idx, ok := l.byID[*side.ID]; ok {
			return idx, true
		}
	}
	idx, ok := l.byName[namematch.Normalize(side.Name)]
	return idx, ok
}

// ResolveEuropeanActivity builds one status per tracked team, sorted by
// team name, and one summary per competition in input order.
func ResolveEuropeanActivity(competitions []europe.CompetitionFixtures, teams []TrackedTeamRef, now time.Time) ([]europe.TeamStatus, []europe.CompetitionSummary) {
	statuses := make([]europe.TeamStatus, len(teams))
	nextDates := make([]time.Time, len(teams))
	for i, team := range teams {
		statuses[i] = europe.TeamStatus{
			TeamID:       team.TeamID,
			TeamName:     team.TeamName,
			TeamLogo:     team.TeamLogo,
			Competitions: []europe.Competition{},
			NextFixtures: []europe.NextFixture{},
		}
	}

	lookup := newTrackedLookup(teams)
	summaries := make([]europe.CompetitionSummary, 0, len(competitions))
	for _, comp := range competitions {
		summary := europe.CompetitionSummary{
			LeagueID:   comp.LeagueID,
			LeagueName: competitionName(comp),
			Fixtures:   len(comp.Fixtures),
		}

		for _, f := range comp.Fixtures {
			leagueName := f.LeagueName
			if leagueName == "" {
				leagueName = defaultLeagueName(comp.LeagueID)
			}
			active := IsFixtureStillActive(f, now)
			matched := false

			sides := [2]fixture.TeamRef{f.Home, f.Away}
			for sideIdx, side := range sides {
				idx, ok := lookup.match(side)
				if !ok {
					continue
				}
				matched = true
				status := &statuses[idx]
				addCompetition(status, comp.LeagueID, leagueName)
				if !active {
					continue
				}

				status.IsActiveInEurope = true
				if !f.HasDate() {
					continue
				}
				opponent := sides[1-sideIdx]
				next := europe.NextFixture{
					FixtureID:    f.ID,
					LeagueID:     comp.LeagueID,
					LeagueName:   leagueName,
					FixtureDate:  formatInstantPtr(f.Date),
					FixtureLabel: fixtureLabel(f),
					Stage:        optionalString(strings.TrimSpace(f.Round)),
					OpponentName: optionalString(opponent.Name),
					OpponentLogo: opponent.Logo,
				}
				addNextFixture(status, next)

				if nextDates[idx].IsZero() || f.Date.Before(nextDates[idx]) {
					nextDates[idx] = f.Date
					status.NextFixtureDate = next.FixtureDate
					label := next.FixtureLabel
					status.NextFixtureLabel = &label
					status.NextFixtureStage = next.Stage
					status.NextOpponentName = next.OpponentName
					status.NextOpponentLogo = next.OpponentLogo
				}
			}
			if matched {
				summary.MatchedFixtures++
			}
		}
		summaries = append(summaries, summary)
	}

	for i := range statuses {
		next := statuses[i].NextFixtures
		sort.SliceStable(next, func(a, b int) bool {
			return *next[a].FixtureDate < *next[b].FixtureDate
		})
		if len(next) > maxNextFixtures {
			statuses[i].NextFixtures = next[:maxNextFixtures]
		}
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		return strings.ToLower(statuses[i].TeamName) < strings.ToLower(statuses[j].TeamName)
	})
	return statuses, summaries
}

func addCompetition(status *europe.TeamStatus, leagueID int64, leagueName string) {
	for _, c := range status.Competitions {
		if c.LeagueID == leagueID {
			return
		}
	}
	status.Competitions = append(status.Competitions, europe.Competition{LeagueID: leagueID, LeagueName: leagueName})
}

func addNextFixture(status *europe.TeamStatus, next europe.NextFixture) {
	for _, existing := range status.NextFixtures {
		if existing.FixtureID == next.FixtureID {
			return
		}
	}
	status.NextFixtures = append(status.NextFixtures, next)
}

func competitionName(comp europe.CompetitionFixtures) string {
	if len(comp.Fixtures) > 0 && comp.Fixtures[0].LeagueName != "" {
		return comp.Fixtures[0].LeagueName
	}
	return defaultLeagueName(comp.LeagueID)
}

func defaultLeagueName(leagueID int64) string {
	return fmt.Sprintf("League %d", leagueID)
}

func fixtureLabel(f fixture.Fixture) string {
	home, away := f.Home.Name, f.Away.Name
	if home == "" {
		home = fixture.Unknown
	}
	if away == "" {
		away = fixture.Unknown
	}
	return home + " vs " + away
}

// instantLayout is UTC with millisecond precision.
const instantLayout = "2006-01-02T15:04:05.000Z"

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func formatInstantPtr(t time.Time) *string {
	v := formatInstant(t)
	return &v
}
