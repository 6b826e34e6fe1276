package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
)

func coefficientPage(startRank, n int) []coefficient.Entry {
	out := make([]coefficient.Entry, 0, n)
	for i := 0; i < n; i++ {
		rank := startRank + i
		out = append(out, coefficient.Entry{Rank: rank, TeamName: fmt.Sprintf("Club %d", rank), Coefficient: float64(200 - rank)})
	}
	return out
}

func newCoefficientService(provider *fakeCoefficientProvider, writer *fakeSnapshotWriter, cfg CoefficientSyncConfig) *CoefficientSyncService {
	resolver := fakeConfigResolver{cfg: coefficient.APIConfig{
		APIKey:     "key",
		CompAPIURL: "https://comp.example/",
		Source:     coefficient.ConfigSourceScraped,
		PageURL:    "https://de.uefa.example/rankings?year=2026",
	}}
	svc := NewCoefficientSyncService(resolver, provider, writer, cfg, testLogger)
	svc.now = func() time.Time { return time.Date(2026, time.February, 26, 6, 0, 0, 0, time.UTC) }
	return svc
}

func TestCoefficientSyncService_StopsOnShortPage(t *testing.T) {
	t.Parallel()

	provider := &fakeCoefficientProvider{pages: map[int][]coefficient.Entry{
		1: coefficientPage(1, 3),
		2: coefficientPage(4, 2),
		3: coefficientPage(6, 3),
	}}
	writer := &fakeSnapshotWriter{}
	svc := newCoefficientService(provider, writer, CoefficientSyncConfig{SeasonYear: 2026, Limit: 100, PageSize: 3})

	result, err := svc.Run(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("run coefficients: %v", err)
	}
	if result.Fetched != 5 || result.Pages != 2 || result.ConfigSource != coefficient.ConfigSourceScraped {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(provider.queries) != 2 {
		t.Fatalf("short page must end pagination, got %d requests", len(provider.queries))
	}

	raw, ok := writer.get(CoefficientSnapshotPath)
	if !ok {
		t.Fatalf("coefficients.json not written")
	}
	snapshot := raw.(coefficient.Snapshot)
	if snapshot.GeneratedAt != "2026-02-26T06:00:00.000Z" {
		t.Fatalf("unexpected generatedAt: %s", snapshot.GeneratedAt)
	}
	if snapshot.Source.Endpoint != "https://comp.example/v2/coefficients" || snapshot.Source.LastRequestURL == "" {
		t.Fatalf("unexpected provenance: %+v", snapshot.Source)
	}
	if snapshot.Source.RequestedLimit != 100 || snapshot.Source.Fetched != 5 || *snapshot.Source.TotalAvailable != 8 {
		t.Fatalf("unexpected counts: %+v", snapshot.Source)
	}
	if snapshot.Source.CoefficientRange != coefficient.RangeOverall || snapshot.Source.CoefficientType != coefficient.TypeMenClub {
		t.Fatalf("unexpected range/type: %+v", snapshot.Source)
	}
}

func TestCoefficientSyncService_LimitSortsAndTruncates(t *testing.T) {
	t.Parallel()

	page1 := coefficientPage(1, 4)
	page1[0], page1[3] = page1[3], page1[0]
	provider := &fakeCoefficientProvider{pages: map[int][]coefficient.Entry{
		1: page1,
		2: coefficientPage(5, 4),
		3: coefficientPage(9, 4),
	}}
	writer := &fakeSnapshotWriter{}
	svc := newCoefficientService(provider, writer, CoefficientSyncConfig{SeasonYear: 2026, Limit: 6, PageSize: 4})

	if _, err := svc.Run(context.Background(), "run-2"); err != nil {
		t.Fatalf("run coefficients: %v", err)
	}
	if len(provider.queries) != 2 {
		t.Fatalf("expected two page requests, got %d", len(provider.queries))
	}

	raw, _ := writer.get(CoefficientSnapshotPath)
	clubs := raw.(coefficient.Snapshot).Clubs
	if len(clubs) != 6 {
		t.Fatalf("expected six clubs, got %d", len(clubs))
	}
	for i, club := range clubs {
		if club.Rank != i+1 {
			t.Fatalf("clubs must be sorted by rank: index=%d rank=%d", i, club.Rank)
		}
	}
}

func TestCoefficientSyncService_KeepsProviderRank(t *testing.T) {
	t.Parallel()

	page := coefficientPage(1, 3)
	page[2].Rank = 0
	provider := &fakeCoefficientProvider{pages: map[int][]coefficient.Entry{1: page}}
	writer := &fakeSnapshotWriter{}
	svc := newCoefficientService(provider, writer, CoefficientSyncConfig{SeasonYear: 2026, Limit: 10, PageSize: 5})

	if _, err := svc.Run(context.Background(), "run-7"); err != nil {
		t.Fatalf("run coefficients: %v", err)
	}

	raw, _ := writer.get(CoefficientSnapshotPath)
	clubs := raw.(coefficient.Snapshot).Clubs
	if len(clubs) != 3 {
		t.Fatalf("expected three clubs, got %d", len(clubs))
	}
	if clubs[0].TeamName != "Club 3" || clubs[0].Rank != 0 {
		t.Fatalf("a zero position must be kept as delivered: %+v", clubs[0])
	}
	if clubs[1].Rank != 1 || clubs[2].Rank != 2 {
		t.Fatalf("unexpected rank order: %d, %d", clubs[1].Rank, clubs[2].Rank)
	}
}

func TestCoefficientSyncService_PageCap(t *testing.T) {
	t.Parallel()

	pages := make(map[int][]coefficient.Entry)
	for page := 1; page <= 12; page++ {
		pages[page] = coefficientPage((page-1)*2+1, 2)
	}
	provider := &fakeCoefficientProvider{pages: pages}
	svc := newCoefficientService(provider, &fakeSnapshotWriter{}, CoefficientSyncConfig{SeasonYear: 2026, Limit: 100, PageSize: 2})

	result, err := svc.Run(context.Background(), "run-3")
	if err != nil {
		t.Fatalf("run coefficients: %v", err)
	}
	if result.Pages != 10 || result.Fetched != 20 {
		t.Fatalf("unexpected page cap result: %+v", result)
	}
}

func TestCoefficientSyncService_Failures(t *testing.T) {
	t.Parallel()

	t.Run("empty ranking", func(t *testing.T) {
		t.Parallel()
		writer := &fakeSnapshotWriter{}
		svc := newCoefficientService(&fakeCoefficientProvider{}, writer, CoefficientSyncConfig{SeasonYear: 2026})
		_, err := svc.Run(context.Background(), "run-4")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, ok := writer.get(CoefficientSnapshotPath); ok {
			t.Fatalf("nothing should be written")
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		t.Parallel()
		upstream := NewUpstreamRequestError("https://comp.example/v2/coefficients", 503, []byte("down"))
		svc := newCoefficientService(&fakeCoefficientProvider{err: upstream}, &fakeSnapshotWriter{}, CoefficientSyncConfig{SeasonYear: 2026})
		_, err := svc.Run(context.Background(), "run-5")
		var target *UpstreamRequestError
		if !errors.As(err, &target) || target.StatusCode != 503 {
			t.Fatalf("expected upstream request error, got %v", err)
		}
	})

	t.Run("resolver error", func(t *testing.T) {
		t.Parallel()
		svc := NewCoefficientSyncService(
			fakeConfigResolver{err: &ConfigurationError{Key: "UEFA_API_KEY", Reason: "not found"}},
			&fakeCoefficientProvider{},
			&fakeSnapshotWriter{},
			CoefficientSyncConfig{SeasonYear: 2026},
			testLogger,
		)
		_, err := svc.Run(context.Background(), "run-6")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}
