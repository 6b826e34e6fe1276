package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/ucl-replacement-race/internal/config"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

func jobConfig() config.Config {
	return config.Config{
		APIFootballKey:       "key",
		UEFARankingsYear:     2026,
		FixturesTimezone:     "UTC",
		WindowTimezone:       "UTC",
		EuropeActiveTimezone: "UTC",
		EuropeActiveToDate:   "2026-08-27",
	}
}

func recordingApp(calls *[]string, failOn string) *App {
	a := &App{cfg: jobConfig(), logger: logging.NewNop(), jobs: map[string]jobRunner{}}
	for _, name := range AllJobs {
		job := name
		a.jobs[job] = func(context.Context, string) error {
			*calls = append(*calls, job)
			if job == failOn {
				return errors.New("boom")
			}
			return nil
		}
	}
	return a
}

func TestAppRun_AllRunsJobsInOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	a := recordingApp(&calls, "")
	if err := a.Run(context.Background(), " ALL ", "run-1"); err != nil {
		t.Fatalf("run all: %v", err)
	}
	if len(calls) != len(AllJobs) {
		t.Fatalf("unexpected calls: %v", calls)
	}
	for i, job := range AllJobs {
		if calls[i] != job {
			t.Fatalf("unexpected order at %d: got=%s want=%s", i, calls[i], job)
		}
	}
}

func TestAppRun_AllStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	var calls []string
	a := recordingApp(&calls, JobStandings)
	if err := a.Run(context.Background(), JobAll, "run-1"); err == nil {
		t.Fatalf("expected failure")
	}
	if len(calls) != 2 || calls[1] != JobStandings {
		t.Fatalf("expected run to stop after standings, got %v", calls)
	}
}

func TestAppRun_UnknownJob(t *testing.T) {
	t.Parallel()

	var calls []string
	a := recordingApp(&calls, "")
	err := a.Run(context.Background(), "live-scores", "run-1")
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if IsJob("live-scores") || !IsJob(JobEuropeanActive) || !IsJob(JobAll) {
		t.Fatalf("unexpected IsJob results")
	}
}

func TestAppRun_PreflightRejectsBeforeAnyJob(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		job    string
		mutate func(*config.Config)
		key    string
	}{
		{name: "missing football key", job: JobAll, mutate: func(c *config.Config) { c.APIFootballKey = " " }, key: "API_FOOTBALL_KEY"},
		{name: "bad fixtures timezone", job: JobAll, mutate: func(c *config.Config) { c.FixturesTimezone = "Mars/Olympus" }, key: "FIXTURES_TIMEZONE"},
		{name: "bad window timezone", job: JobDomesticFixtures, mutate: func(c *config.Config) { c.WindowTimezone = "Nowhere/Else" }, key: "WINDOW_TIMEZONE"},
		{name: "bad europe timezone", job: JobAll, mutate: func(c *config.Config) { c.EuropeActiveTimezone = "Atlantis/Capital" }, key: "EUROPE_ACTIVE_TIMEZONE"},
		{name: "bad to date", job: JobAll, mutate: func(c *config.Config) { c.EuropeActiveToDate = "27.08.2026" }, key: "EUROPE_ACTIVE_TO_DATE"},
		{name: "bad rankings year", job: JobCoefficients, mutate: func(c *config.Config) { c.UEFARankingsYear = 0 }, key: "UEFA_RANKINGS_YEAR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls []string
			a := recordingApp(&calls, "")
			tc.mutate(&a.cfg)

			err := a.Run(context.Background(), tc.job, "run-1")
			var cfgErr *usecase.ConfigurationError
			if !errors.As(err, &cfgErr) || cfgErr.Key != tc.key {
				t.Fatalf("expected %s configuration error, got %v", tc.key, err)
			}
			if !errors.Is(err, usecase.ErrInvalidInput) {
				t.Fatalf("expected configuration error to match ErrInvalidInput")
			}
			if len(calls) != 0 {
				t.Fatalf("no job may start on a configuration error, got %v", calls)
			}
		})
	}
}

func TestAppRun_SingleJobIgnoresOtherJobSettings(t *testing.T) {
	t.Parallel()

	var calls []string
	a := recordingApp(&calls, "")
	a.cfg.APIFootballKey = ""

	if err := a.Run(context.Background(), JobCoefficients, "run-1"); err != nil {
		t.Fatalf("coefficients needs no football key: %v", err)
	}
	if len(calls) != 1 || calls[0] != JobCoefficients {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestAppRun_AllWithoutFootballKeyMakesNoRequests(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	outputDir := t.TempDir()
	cfg := jobConfig()
	cfg.APIFootballKey = ""
	cfg.ServiceName = "ucl-replacement-race"
	cfg.APIBaseURL = server.URL
	cfg.APITimeout = 5 * time.Second
	cfg.Season = 2025
	cfg.OutputDir = outputDir
	cfg.Tracking = config.DefaultTracking()
	cfg.EuropeActiveLeagueIDs = []int64{2, 3, 848}
	cfg.UEFARankingsPageURL = server.URL + "/rankings?year={year}"
	cfg.UEFACoeffLimit = 10
	cfg.UEFACoeffPageSize = 10
	cfg.UEFALanguage = "EN"

	a, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer func() { _ = a.Close() }()

	err = a.Run(context.Background(), JobAll, "run-1")
	var cfgErr *usecase.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "API_FOOTBALL_KEY" {
		t.Fatalf("expected API_FOOTBALL_KEY configuration error, got %v", err)
	}
	if got := hits.Load(); got != 0 {
		t.Fatalf("expected no upstream requests, got %d", got)
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no snapshot files, got %d", len(entries))
	}
}

func TestAppClose_WithoutArchive(t *testing.T) {
	t.Parallel()

	a := &App{}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
