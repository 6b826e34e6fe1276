package usecase

import (
	"context"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/rawdata"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
)

// FootballProvider is the football statistics API.
type FootballProvider interface {
	FetchStandings(ctx context.Context, leagueID int64, season int) (standing.Table, rawdata.Payload, error)
	FetchFixtures(ctx context.Context, q fixture.Query) ([]fixture.Fixture, rawdata.Payload, error)
}

// CoefficientProvider is the club coefficient ranking API.
type CoefficientProvider interface {
	FetchPage(ctx context.Context, cfg coefficient.APIConfig, q coefficient.PageQuery) (coefficient.Page, error)
}

// CoefficientConfigResolver discovers the credentials of the ranking API.
type CoefficientConfigResolver interface {
	ResolveAPIConfig(ctx context.Context) (coefficient.APIConfig, error)
}

// Artifact is one JSON file to write, relative to the output root.
type Artifact struct {
	Path    string
	Payload any
}

// SnapshotWriter writes every artifact it is given and reports the first
// failure only after attempting all of them.
type SnapshotWriter interface {
	WriteAll(ctx context.Context, artifacts []Artifact) error
}
