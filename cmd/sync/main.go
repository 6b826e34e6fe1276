package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/ucl-replacement-race/internal/app"
	"github.com/riskibarqy/ucl-replacement-race/internal/config"
	"github.com/riskibarqy/ucl-replacement-race/internal/observability"
	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 || !app.IsJob(strings.ToLower(strings.TrimSpace(os.Args[1]))) {
		printUsage()
		return 2
	}
	job := strings.ToLower(strings.TrimSpace(os.Args[1]))

	// A missing .env is normal outside local runs.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel).With("service", cfg.ServiceName)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("stop pyroscope", "error", err)
		}
	}()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	if err := a.Run(ctx, job, runID); err != nil {
		logger.ErrorContext(ctx, "sync failed", "job", job, "run_id", runID, "error", err)
		return 1
	}

	return 0
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <%s|%s>\n", name, strings.Join(app.AllJobs, "|"), app.JobAll)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s %s\n", name, app.JobCoefficients)
	fmt.Fprintf(os.Stderr, "  %s %s\n", name, app.JobAll)
}
