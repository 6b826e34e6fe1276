package usecase

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
)

// Snapshot paths relative to the output root.
const (
	RaceSnapshotPath        = "race.json"
	CoefficientSnapshotPath = "coefficients.json"
	DomesticSnapshotPath    = "domestic-fixtures.json"
	EuropeSnapshotPath      = "european-active-teams.json"
)

func LeagueSnapshotPath(leagueID int64) string {
	return "leagues/" + strconv.FormatInt(leagueID, 10) + ".json"
}

// jobRun carries the per-run identity through logs and spans.
type jobRun struct {
	name    string
	runID   string
	started time.Time
	logger  *logging.Logger
	span    trace.Span
}

func beginJob(ctx context.Context, logger *logging.Logger, name, runID string, attrs ...attribute.KeyValue) (context.Context, *jobRun) {
	attrs = append(attrs, attribute.String("job.run_id", runID))
	ctx, span := startJobSpan(ctx, name, attrs...)
	run := &jobRun{
		name:    name,
		runID:   runID,
		started: time.Now(),
		logger:  logger.With("job", name, "run_id", runID),
		span:    span,
	}
	run.logger.InfoContext(ctx, "job started")
	return ctx, run
}

// finish closes the span and logs the outcome. It returns err unchanged.
func (r *jobRun) finish(ctx context.Context, err error, args ...any) error {
	defer r.span.End()

	args = append(args, "duration", time.Since(r.started))
	if err != nil {
		recordSpanError(r.span, err)
		r.span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorContext(ctx, "job failed", append(args, "error", err)...)
		return err
	}
	r.logger.InfoContext(ctx, "job finished", args...)
	return nil
}

func (r *jobRun) warn(ctx context.Context, w PartialCoverageWarning, args ...any) {
	r.span.AddEvent("partial_coverage", trace.WithAttributes(
		attribute.String("kind", w.Kind),
		attribute.String("subject", w.Subject),
	))
	args = append([]any{"kind", w.Kind, "subject", w.Subject, "scope", w.Scope}, args...)
	r.logger.WarnContext(ctx, "partial coverage", args...)
}
