package cron

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/flemzord/recall/internal/extract"
	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/status"
	"github.com/flemzord/recall/internal/telemetry"
)

// snapshotLabel names the metadata file inside each snapshot directory.
const snapshotLabel = "recent"

// ExtractionJob snapshots the recent extraction window to disk and runs
// the analysis pass over it. Each run creates a timestamped directory
// under Dir.
type ExtractionJob struct {
	Repo         *index.Repository
	Dir          string
	Hours        int
	Session      string // empty = all sessions
	Timeout      time.Duration
	Metrics      *status.Metrics
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"

	// Now is a clock override for tests; nil means time.Now.
	Now func() time.Time
}

// Compile-time interface check.
var _ Job = (*ExtractionJob)(nil)

// Name implements Job.
func (j *ExtractionJob) Name() string { return "extraction" }

// Schedule implements Job.
func (j *ExtractionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run executes one extraction: load index, select the window, persist
// the snapshot, analyze it. A run with an empty window succeeds without
// writing anything.
func (j *ExtractionJob) Run(ctx context.Context) error {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	started := time.Now()
	err := j.run(ctx)
	if j.Metrics != nil {
		j.Metrics.RecordExtraction(time.Since(started), err)
	}
	return err
}

func (j *ExtractionJob) run(ctx context.Context) error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	ctx, span := telemetry.Tracer().Start(ctx, "extraction.run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("extraction.hours", j.Hours),
		attribute.String("extraction.session", j.Session),
	)

	doc, err := j.Repo.Load()
	if err != nil {
		span.SetStatus(codes.Error, "load index")
		return fmt.Errorf("cron: extraction: %w", err)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("cron: extraction cancelled: %w", ctx.Err())
	}

	runAt := now().UTC()
	snap := extract.Window(doc, extract.Params{
		Cutoff:  runAt.Add(-time.Duration(j.Hours) * time.Hour),
		Hours:   j.Hours,
		Session: j.Session,
	})
	span.SetAttributes(attribute.Int("extraction.count", snap.Count))

	if snap.Count == 0 {
		j.logger().Info("cron: extraction window empty, nothing to write")
		return nil
	}

	dir := filepath.Join(j.Dir, runAt.Format("20060102-150405"))
	if _, err := extract.WriteSnapshot(dir, snap, snapshotLabel); err != nil {
		span.SetStatus(codes.Error, "write snapshot")
		return fmt.Errorf("cron: extraction: %w", err)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("cron: extraction cancelled: %w", ctx.Err())
	}

	analysis, err := extract.Analyze(dir)
	if err != nil {
		span.SetStatus(codes.Error, "analyze snapshot")
		return fmt.Errorf("cron: extraction: %w", err)
	}
	if _, err := extract.WriteAnalysis(dir, analysis); err != nil {
		span.SetStatus(codes.Error, "write analysis")
		return fmt.Errorf("cron: extraction: %w", err)
	}

	j.logger().Info("cron: extraction complete",
		"dir", dir,
		"questions", snap.Count,
		"answers", len(snap.Answers),
		"patterns", len(analysis.Patterns),
	)
	return nil
}

func (j *ExtractionJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

// IntegrityJob periodically validates the index document: every index
// table reference must resolve and the metadata counters must match the
// stored entries.
type IntegrityJob struct {
	Repo         *index.Repository
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "30 * * * *"
}

// Compile-time interface check.
var _ Job = (*IntegrityJob)(nil)

// Name implements Job.
func (j *IntegrityJob) Name() string { return "integrity" }

// Schedule implements Job.
func (j *IntegrityJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "30 * * * *"
}

// Run loads the index and validates its internal consistency.
func (j *IntegrityJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: integrity check cancelled: %w", ctx.Err())
	}

	doc, err := j.Repo.Load()
	if err != nil {
		return fmt.Errorf("cron: integrity check: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("cron: integrity check: %w", err)
	}

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("cron: index integrity ok",
		"pairs", doc.Metadata.TotalPairs,
		"sessions", len(doc.Sessions),
	)
	return nil
}
