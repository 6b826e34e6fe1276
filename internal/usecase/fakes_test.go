package usecase

import (
	"context"
	"strconv"
	"sync"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/rawdata"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/standing"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

var testLogger = logging.NewNop()

type fakeFootballProvider struct {
	mu        sync.Mutex
	standings map[int64]standing.Table
	fixtures  map[int64][]fixture.Fixture
	errs      map[int64]error
	queries   []fixture.Query
}

func (f *fakeFootballProvider) FetchStandings(_ context.Context, leagueID int64, season int) (standing.Table, rawdata.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[leagueID]; err != nil {
		return standing.Table{}, rawdata.Payload{}, err
	}
	table := f.standings[leagueID]
	return table, rawdata.Payload{
		Source:     "api-football",
		EntityType: rawdata.EntityStandings,
		LeagueID:   leagueID,
		Season:     season,
		ItemCount:  len(table.Rows),
	}, nil
}

func (f *fakeFootballProvider) FetchFixtures(_ context.Context, q fixture.Query) ([]fixture.Fixture, rawdata.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err := f.errs[q.LeagueID]; err != nil {
		return nil, rawdata.Payload{}, err
	}
	items := f.fixtures[q.LeagueID]
	return items, rawdata.Payload{
		Source:     "api-football",
		EntityType: rawdata.EntityResults,
		LeagueID:   q.LeagueID,
		Season:     q.Season,
		ItemCount:  len(items),
	}, nil
}

func (f *fakeFootballProvider) recordedQueries() []fixture.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fixture.Query, len(f.queries))
	copy(out, f.queries)
	return out
}

type fakeSnapshotWriter struct {
	mu        sync.Mutex
	artifacts map[string]any
	err       error
}

func (w *fakeSnapshotWriter) WriteAll(_ context.Context, artifacts []Artifact) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.artifacts == nil {
		w.artifacts = make(map[string]any)
	}
	for _, a := range artifacts {
		w.artifacts[a.Path] = a.Payload
	}
	return w.err
}

func (w *fakeSnapshotWriter) get(path string) (any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.artifacts[path]
	return v, ok
}

type fakeConfigResolver struct {
	cfg coefficient.APIConfig
	err error
}

func (r fakeConfigResolver) ResolveAPIConfig(context.Context) (coefficient.APIConfig, error) {
	return r.cfg, r.err
}

type fakeCoefficientProvider struct {
	pages   map[int][]coefficient.Entry
	err     error
	queries []coefficient.PageQuery
}

func (p *fakeCoefficientProvider) FetchPage(_ context.Context, _ coefficient.APIConfig, q coefficient.PageQuery) (coefficient.Page, error) {
	p.queries = append(p.queries, q)
	if p.err != nil {
		return coefficient.Page{}, p.err
	}
	total := 0
	for _, members := range p.pages {
		total += len(members)
	}
	return coefficient.Page{
		RequestURL:    "https://comp.example/v2/coefficients?page=" + strconv.Itoa(q.Page),
		Members:       p.pages[q.Page],
		TotalElements: &total,
	}, nil
}
