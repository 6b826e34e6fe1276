package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

func TestJobRunWarn_LogsSubject(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx, run := beginJob(context.Background(), logging.FromZap(zap.New(core)), "european-active", "run-1")
	run.warn(ctx, PartialCoverageWarning{
		Kind:    CoverageCompetitionNoMatches,
		Subject: "UEFA Conference League",
		Scope:   "european-active",
	}, "league_id", 848)
	_ = run.finish(ctx, nil)

	warnings := logs.FilterMessage("partial coverage").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one partial coverage entry, got=%d", len(warnings))
	}
	fields := warnings[0].ContextMap()
	if fields["subject"] != "UEFA Conference League" {
		t.Fatalf("expected subject field, got=%v", fields["subject"])
	}
	if _, ok := fields["team"]; ok {
		t.Fatalf("competition warnings must not be logged as a team: %v", fields)
	}
	if fields["kind"] != CoverageCompetitionNoMatches || fields["scope"] != "european-active" || fields["run_id"] != "run-1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["league_id"] != int64(848) {
		t.Fatalf("expected extra args to be kept, got=%v", fields["league_id"])
	}
}
