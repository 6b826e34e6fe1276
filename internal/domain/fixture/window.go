package fixture

import "time"

const DateLayout = "2006-01-02"

// Window is a Monday aligned 7 day block. Start is 00:00 on Monday and End
// is the last instant of Sunday, both in the reference zone.
type Window struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// Contains is inclusive on both ends.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// WeekWindows is computed once per run and shared by every team.
type WeekWindows struct {
	Now     time.Time `json:"-"`
	Current Window    `json:"currentWeek"`
	Last    Window    `json:"lastWeek"`
}
