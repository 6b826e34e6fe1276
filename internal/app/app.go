package app

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/ucl-replacement-race/external/apifootball"
	"github.com/riskibarqy/ucl-replacement-race/external/uefa"
	"github.com/riskibarqy/ucl-replacement-race/internal/config"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/fixture"
	"github.com/riskibarqy/ucl-replacement-race/internal/domain/rawdata"
	"github.com/riskibarqy/ucl-replacement-race/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/ucl-replacement-race/internal/infrastructure/snapshot"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	JobCoefficients     = "coefficients"
	JobStandings        = "standings"
	JobDomesticFixtures = "domestic-fixtures"
	JobEuropeanActive   = "european-active"
	JobAll              = "all"

	scrapedConfigTTL = 30 * time.Minute
)

// AllJobs is the order the all command runs jobs in.
var AllJobs = []string{JobCoefficients, JobStandings, JobDomesticFixtures, JobEuropeanActive}

type jobRunner func(ctx context.Context, runID string) error

// App holds the wired job services for one process.
type App struct {
	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB
	jobs   map[string]jobRunner
}

// New wires clients, snapshot storage and the optional archive into the
// four sync jobs.
func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := &http.Client{
		Timeout:   cfg.APITimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	football := apifootball.NewClient(apifootball.ClientConfig{
		HTTPClient: httpClient,
		BaseURL:    cfg.APIBaseURL,
		Host:       cfg.APIFootballHost,
		APIKey:     cfg.APIFootballKey,
		Timeout:    cfg.APITimeout,
		Logger:     logger,
	})
	uefaClient := uefa.NewClient(uefa.ClientConfig{
		HTTPClient: httpClient,
		Timeout:    cfg.APITimeout,
		Logger:     logger,
	})
	resolver := uefa.NewConfigResolver(uefaClient, uefa.StaticConfigResolver{
		APIKey:     cfg.UEFAAPIKey,
		CompAPIURL: cfg.UEFACompAPIURL,
		PageURL:    cfg.RankingsPageURL(),
	}, scrapedConfigTTL)

	writer := snapshot.NewFileWriter(cfg.OutputDir, logger)
	reader := snapshot.NewReader(cfg.APITimeout)
	races := snapshot.NewRaceRepository(reader, cfg.RaceLocation())
	coefficients := snapshot.NewCoefficientRepository(reader, filepath.Join(cfg.OutputDir, usecase.CoefficientSnapshotPath))
	europeRepo := snapshot.NewEuropeRepository(reader, filepath.Join(cfg.OutputDir, usecase.EuropeSnapshotPath))

	a := &App{cfg: cfg, logger: logger}

	var archive rawdata.Repository
	if cfg.ArchiveEnabled {
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		archive = postgres.NewRawDataRepository(db)
		logger.Info("snapshot archive enabled", "db_name", dbNameFromURL(cfg.DBURL))
	}

	coefficientSvc := usecase.NewCoefficientSyncService(resolver, uefaClient, writer, usecase.CoefficientSyncConfig{
		SeasonYear: cfg.UEFARankingsYear,
		Limit:      cfg.UEFACoeffLimit,
		PageSize:   cfg.UEFACoeffPageSize,
		Language:   cfg.UEFALanguage,
		Endpoint:   uefa.Endpoint,
	}, logger)
	raceSvc := usecase.NewRaceSyncService(football, coefficients, europeRepo, archive, writer, usecase.RaceSyncConfig{
		Season:            cfg.Season,
		Leagues:           cfg.Tracking.Leagues,
		TieBreak:          cfg.Tracking.TieBreak,
		StandingsEndpoint: football.Endpoint("standings"),
		ResultsLimit:      cfg.ResultsLimit,
		ResultsStatus:     cfg.ResultsStatus,
		Timezone:          cfg.FixturesTimezone,
	}, logger)
	domesticSvc := usecase.NewDomesticFixtureSyncService(football, races, writer, usecase.DomesticFixtureSyncConfig{
		Season:           cfg.Season,
		Timezone:         cfg.FixturesTimezone,
		WindowTimezone:   cfg.WindowTimezone,
		FixturesEndpoint: football.Endpoint("fixtures"),
	}, logger)
	europeSvc := usecase.NewEuropeanActiveSyncService(football, races, writer, usecase.EuropeanActiveSyncConfig{
		Season:           cfg.Season,
		CompetitionIDs:   cfg.EuropeActiveLeagueIDs,
		ToDate:           cfg.EuropeActiveToDate,
		Timezone:         cfg.EuropeActiveTimezone,
		FixturesEndpoint: football.Endpoint("fixtures"),
	}, logger)

	a.jobs = map[string]jobRunner{
		JobCoefficients: func(ctx context.Context, runID string) error {
			_, err := coefficientSvc.Run(ctx, runID)
			return err
		},
		JobStandings: func(ctx context.Context, runID string) error {
			_, err := raceSvc.Run(ctx, runID)
			return err
		},
		JobDomesticFixtures: func(ctx context.Context, runID string) error {
			_, err := domesticSvc.Run(ctx, runID)
			return err
		},
		JobEuropeanActive: func(ctx context.Context, runID string) error {
			_, err := europeSvc.Run(ctx, runID)
			return err
		},
	}

	return a, nil
}

// IsJob reports whether name is a known job or the all command.
func IsJob(name string) bool {
	if name == JobAll {
		return true
	}
	for _, job := range AllJobs {
		if job == name {
			return true
		}
	}
	return false
}

// Run executes one job, or every job in order for the all command,
// stopping at the first failure. The settings of every selected job are
// checked before the first one starts.
func (a *App) Run(ctx context.Context, name, runID string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	names := []string{name}
	if name == JobAll {
		names = AllJobs
	}

	runners := make([]jobRunner, 0, len(names))
	for _, job := range names {
		runner, ok := a.jobs[job]
		if !ok {
			return crerr.Wrapf(usecase.ErrInvalidInput, "unknown job %q", job)
		}
		runners = append(runners, runner)
	}
	if err := a.preflight(names); err != nil {
		return err
	}

	for _, runner := range runners {
		if err := runner(ctx, runID); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the archive connection pool.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// preflight validates what the named jobs read from configuration without
// touching the network or the output directory.
func (a *App) preflight(jobs []string) error {
	for _, job := range jobs {
		switch job {
		case JobCoefficients:
			if a.cfg.UEFARankingsYear <= 0 {
				return &usecase.ConfigurationError{Key: "UEFA_RANKINGS_YEAR", Reason: "must be a positive year"}
			}
		case JobStandings:
			if err := a.requireFootballKey(); err != nil {
				return err
			}
		case JobDomesticFixtures:
			if err := a.requireFootballKey(); err != nil {
				return err
			}
			if err := checkLocation("FIXTURES_TIMEZONE", a.cfg.FixturesTimezone); err != nil {
				return err
			}
			if err := checkLocation("WINDOW_TIMEZONE", a.cfg.WindowTimezone); err != nil {
				return err
			}
		case JobEuropeanActive:
			if err := a.requireFootballKey(); err != nil {
				return err
			}
			if err := checkLocation("EUROPE_ACTIVE_TIMEZONE", a.cfg.EuropeActiveTimezone); err != nil {
				return err
			}
			if _, err := time.Parse(fixture.DateLayout, strings.TrimSpace(a.cfg.EuropeActiveToDate)); err != nil {
				return &usecase.ConfigurationError{Key: "EUROPE_ACTIVE_TO_DATE", Reason: "expected YYYY-MM-DD"}
			}
		}
	}
	return nil
}

func (a *App) requireFootballKey() error {
	if strings.TrimSpace(a.cfg.APIFootballKey) == "" {
		return &usecase.ConfigurationError{Key: "API_FOOTBALL_KEY", Reason: "is required"}
	}
	return nil
}

func checkLocation(key, name string) error {
	if _, err := time.LoadLocation(name); err != nil {
		return &usecase.ConfigurationError{Key: key, Reason: err.Error()}
	}
	return nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.ServiceName)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open archive database")
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping archive database")
	}

	return db, nil
}
