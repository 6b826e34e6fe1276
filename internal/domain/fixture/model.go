package fixture

import (
	"strings"
	"time"
)

// Provider status codes.
const (
	StatusNotStarted      = "NS"
	StatusTimeToBeDefined = "TBD"
	StatusFirstHalf       = "1H"
	StatusHalfTime        = "HT"
	StatusSecondHalf      = "2H"
	StatusExtraTime       = "ET"
	StatusPenalties       = "P"
	StatusBreakTime       = "BT"
	StatusInterrupted     = "INT"
	StatusSuspended       = "SUSP"
	StatusFullTime        = "FT"
	StatusAfterExtraTime  = "AET"
	StatusAfterPenalties  = "PEN"
	StatusAwarded         = "AWD"
	StatusWalkover        = "WO"
	StatusCancelled       = "CANC"
	StatusAbandoned       = "ABD"
	StatusPostponed       = "PST"
)

var (
	finishedStatuses = statusSet(StatusFullTime, StatusAfterExtraTime, StatusAfterPenalties, StatusAwarded, StatusWalkover)
	terminalStatuses = statusSet(StatusFullTime, StatusAfterExtraTime, StatusAfterPenalties, StatusAwarded, StatusWalkover, StatusCancelled, StatusAbandoned)
	liveStatuses     = statusSet(StatusFirstHalf, StatusHalfTime, StatusSecondHalf, StatusExtraTime, StatusPenalties, StatusBreakTime, StatusInterrupted, StatusSuspended)
)

func statusSet(codes ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		out[code] = struct{}{}
	}
	return out
}

func NormalizeStatus(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// IsFinishedStatus reports whether a result label may be derived.
func IsFinishedStatus(status string) bool {
	_, ok := finishedStatuses[NormalizeStatus(status)]
	return ok
}

// IsTerminalStatus covers finished, cancelled and abandoned matches.
func IsTerminalStatus(status string) bool {
	_, ok := terminalStatuses[NormalizeStatus(status)]
	return ok
}

func IsLiveStatus(status string) bool {
	_, ok := liveStatuses[NormalizeStatus(status)]
	return ok
}

// TeamRef identifies one side of a fixture. ID is nil when the provider
// has not assigned the slot yet.
type TeamRef struct {
	ID   *int64
	Name string
	Logo *string
}

func (r TeamRef) HasID(id int64) bool {
	return r.ID != nil && *r.ID == id
}

// Fixture is one scheduled or played match.
type Fixture struct {
	ID          int64
	RawDate     string
	Date        time.Time
	StatusShort string
	StatusLong  string
	LeagueID    int64
	LeagueName  string
	Season      int
	Round       string
	Home        TeamRef
	Away        TeamRef
	HomeGoals   *int
	AwayGoals   *int
}

// HasDate is false when the provider date was missing or unparsable.
func (f Fixture) HasDate() bool {
	return !f.Date.IsZero()
}

// Query filters the fixtures endpoint. Zero values are not sent.
type Query struct {
	LeagueID int64
	Season   int
	From     string
	To       string
	Timezone string
	Status   string
	Last     int
}
