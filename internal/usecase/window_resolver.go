package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
)

// ComputeWeekWindows returns the Monday aligned current and last week in
// loc. Both windows run from Monday 00:00 through the last instant of
// Sunday.
func ComputeWeekWindows(now time.Time, loc *time.Location) fixture.WeekWindows {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	mondayIndex := (int(today.Weekday()) + 6) % 7

	currentStart := today.AddDate(0, 0, -mondayIndex)
	nextStart := currentStart.AddDate(0, 0, 7)
	lastStart := currentStart.AddDate(0, 0, -7)

	return fixture.WeekWindows{
		Now:     now,
		Current: newWindow(currentStart, nextStart),
		Last:    newWindow(lastStart, currentStart),
	}
}

func newWindow(start, nextStart time.Time) fixture.Window {
	end := nextStart.Add(-time.Nanosecond)
	return fixture.Window{
		From:  start.Format(fixture.DateLayout),
		To:    end.Format(fixture.DateLayout),
		Start: start,
		End:   end,
	}
}

// windowCandidates keeps dated fixtures of teamID inside w, oldest first.
func windowCandidates(fixtures []fixture.Fixture, teamID int64, w fixture.Window) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, 2)
	for _, f := range fixtures {
		if !w.Contains(f.Date) {
			continue
		}
		if !f.Home.HasID(teamID) && !f.Away.HasID(teamID) {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SelectCurrentWeekFixture prefers the earliest fixture kicking off at or
// after now and otherwise returns the latest one already played.
func SelectCurrentWeekFixture(fixtures []fixture.Fixture, teamID int64, windows fixture.WeekWindows) (fixture.Fixture, bool) {
	candidates := windowCandidates(fixtures, teamID, windows.Current)
	if len(candidates) == 0 {
		return fixture.Fixture{}, false
	}
	for _, f := range candidates {
		if !f.Date.Before(windows.Now) {
			return f, true
		}
	}
	return candidates[len(candidates)-1], true
}

// SelectLastWeekFixture returns the chronologically last fixture in w.
func SelectLastWeekFixture(fixtures []fixture.Fixture, teamID int64, w fixture.Window) (fixture.Fixture, bool) {
	candidates := windowCandidates(fixtures, teamID, w)
	if len(candidates) == 0 {
		return fixture.Fixture{}, false
	}
	return candidates[len(candidates)-1], true
}

// BuildDomesticRow describes f from teamID's side. It returns nil when the
// team plays in neither slot.
func BuildDomesticRow(f fixture.Fixture, teamID int64, kickoffLoc *time.Location) *fixture.DomesticRow {
	isHome := f.Home.HasID(teamID)
	if !isHome && !f.Away.HasID(teamID) {
		return nil
	}

	opponent, venue := f.Away, fixture.VenueHome
	if !isHome {
		opponent, venue = f.Home, fixture.VenueAway
	}

	row := &fixture.DomesticRow{
		FixtureID:    f.ID,
		Opponent:     opponent.Name,
		OpponentLogo: opponent.Logo,
		Date:         optionalString(f.RawDate),
		Kickoff:      KickoffLabel(f, kickoffLoc),
		Venue:        venue,
		Result:       ResultLabel(f, teamID),
		StatusShort:  optionalString(f.StatusShort),
		StatusLong:   optionalString(f.StatusLong),
	}
	if row.Opponent == "" {
		row.Opponent = fixture.Unknown
	}
	return row
}

// KickoffLabel renders HH:MM in loc, or TBD without a usable date.
func KickoffLabel(f fixture.Fixture, loc *time.Location) string {
	if !f.HasDate() {
		return fixture.Unknown
	}
	if loc == nil {
		loc = time.UTC
	}
	return f.Date.In(loc).Format("15:04")
}

// ResultLabel formats "{own}-{opponent} {W|D|L}" for finished fixtures with
// numeric goals on both sides.
func ResultLabel(f fixture.Fixture, teamID int64) *string {
	if !fixture.IsFinishedStatus(f.StatusShort) {
		return nil
	}
	if f.HomeGoals == nil || f.AwayGoals == nil {
		return nil
	}

	var own, against int
	switch {
	case f.Home.HasID(teamID):
		own, against = *f.HomeGoals, *f.AwayGoals
	case f.Away.HasID(teamID):
		own, against = *f.AwayGoals, *f.HomeGoals
	default:
		return nil
	}

	outcome := "D"
	if own > against {
		outcome = "W"
	} else if own < against {
		outcome = "L"
	}
	label := fmt.Sprintf("%d-%d %s", own, against, outcome)
	return &label
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
