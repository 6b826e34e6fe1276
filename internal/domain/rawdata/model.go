package rawdata

import "time"

// Entity types archived by the standings job.
const (
	EntityStandings = "standings"
	EntityResults   = "results"
)

// Payload is one raw upstream response kept for audit and replay.
type Payload struct {
	RunID       string
	Source      string
	EntityType  string
	EntityKey   string
	LeagueID    int64
	Season      int
	RequestURL  string
	ItemCount   int
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
