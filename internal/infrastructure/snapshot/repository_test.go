package snapshot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/europe"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

func TestRaceRepository_FileRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writer := NewFileWriter(root, logging.NewNop())
	want := race.Snapshot{
		GeneratedAt: "2026-02-26T10:00:00.000Z",
		Season:      2025,
		Leagues:     []race.LeagueSummary{},
		Race:        []race.Entry{{LeagueID: 179, TeamID: 257, TeamName: "Rangers", Rank: 2, Coefficient: 63}},
	}
	if err := writer.Write(context.Background(), "race.json", want); err != nil {
		t.Fatalf("write race: %v", err)
	}

	repo := NewRaceRepository(NewReader(0), filepath.Join(root, "race.json"))
	got, err := repo.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest race: %v", err)
	}
	if got.Season != 2025 || len(got.Race) != 1 || got.Race[0].TeamName != "Rangers" || got.Race[0].Coefficient != 63 {
		t.Fatalf("unexpected race snapshot: %+v", got)
	}
}

func TestRaceRepository_Errors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	reader := NewReader(0)

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := NewRaceRepository(reader, filepath.Join(root, "absent.json")).Latest(context.Background())
		if !errors.Is(err, usecase.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("race list missing", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(root, "no-race.json")
		if err := os.WriteFile(path, []byte(`{"generatedAt":"x","season":2025,"leagues":[]}`), 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := NewRaceRepository(reader, path).Latest(context.Background())
		var schemaErr *usecase.SchemaViolationError
		if !errors.As(err, &schemaErr) || schemaErr.Field != "race" {
			t.Fatalf("expected schema violation, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(root, "broken.json")
		if err := os.WriteFile(path, []byte(`{"race":`), 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := NewRaceRepository(reader, path).Latest(context.Background()); err == nil {
			t.Fatalf("expected decode error")
		}
	})
}

func TestRaceRepository_Remote(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/race.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"season":2025,"race":[{"teamId":247,"teamName":"Celtic","leagueId":179,"rank":1}]}`))
		case "/data/broken.json":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	reader := NewReader(0)
	got, err := NewRaceRepository(reader, server.URL+"/data/race.json").Latest(context.Background())
	if err != nil {
		t.Fatalf("latest remote race: %v", err)
	}
	if len(got.Race) != 1 || got.Race[0].TeamID != 247 {
		t.Fatalf("unexpected remote race: %+v", got)
	}

	_, err = NewRaceRepository(reader, server.URL+"/data/broken.json").Latest(context.Background())
	var upstream *usecase.UpstreamRequestError
	if !errors.As(err, &upstream) || upstream.StatusCode != http.StatusBadGateway || upstream.Body != "bad gateway" {
		t.Fatalf("expected upstream request error, got %v", err)
	}

	_, err = NewRaceRepository(reader, server.URL+"/data/missing.json").Latest(context.Background())
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected not found for 404, got %v", err)
	}
}

func TestOptionalSnapshots(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	reader := NewReader(0)
	writer := NewFileWriter(root, logging.NewNop())
	ctx := context.Background()

	coefficients := NewCoefficientRepository(reader, filepath.Join(root, "coefficients.json"))
	if _, found, err := coefficients.Latest(ctx); err != nil || found {
		t.Fatalf("expected absent coefficient snapshot: found=%v err=%v", found, err)
	}
	if err := writer.Write(ctx, "coefficients.json", coefficient.Snapshot{
		GeneratedAt: "2026-02-26T06:00:00.000Z",
		Clubs:       []coefficient.Entry{{Rank: 1, TeamID: "50051", TeamName: "Real Madrid", Coefficient: 143}},
	}); err != nil {
		t.Fatalf("write coefficients: %v", err)
	}
	got, found, err := coefficients.Latest(ctx)
	if err != nil || !found || len(got.Clubs) != 1 || got.Clubs[0].Coefficient != 143 {
		t.Fatalf("unexpected coefficient snapshot: %+v found=%v err=%v", got, found, err)
	}

	activity := NewEuropeRepository(reader, filepath.Join(root, "european-active-teams.json"))
	if _, found, err := activity.Latest(ctx); err != nil || found {
		t.Fatalf("expected absent europe snapshot: found=%v err=%v", found, err)
	}
	if err := writer.Write(ctx, "european-active-teams.json", europe.Snapshot{
		Summary: europe.Summary{TrackedTeams: 1, ActiveTeams: 1},
		Teams:   []europe.TeamStatus{{TeamID: 247, TeamName: "Celtic", IsActiveInEurope: true}},
	}); err != nil {
		t.Fatalf("write europe: %v", err)
	}
	europeSnapshot, found, err := activity.Latest(ctx)
	if err != nil || !found || !europeSnapshot.Teams[0].IsActiveInEurope {
		t.Fatalf("unexpected europe snapshot: %+v found=%v err=%v", europeSnapshot, found, err)
	}
}
