// Package worker processes queued export jobs and sweeps recurring schedules.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendtrack/internal/amqp"
	"spendtrack/internal/export"
	"spendtrack/internal/services"
)

// ExportWorker consumes export job messages and periodically runs due export
// schedules.
type ExportWorker struct {
	exports *services.ExportService
	jobs    export.JobStore
}

func NewExportWorker(exports *services.ExportService, jobs export.JobStore) *ExportWorker {
	return &ExportWorker{
		exports: exports,
		jobs:    jobs,
	}
}

// HandleJobMessage processes a single export job message from AMQP. A job id
// the local store has never seen is registered from the message first, so a
// worker running against its own store can pick up jobs published elsewhere.
func (w *ExportWorker) HandleJobMessage(ctx context.Context, msg *amqp.ExportJobMessage) error {
	slog.InfoContext(ctx, "Processing export job message",
		"job_id", msg.JobID,
		"template", msg.Template)

	if _, err := w.jobs.GetJob(ctx, msg.JobID); errors.Is(err, export.ErrJobNotFound) {
		job := export.Job{
			ID:         msg.JobID,
			TemplateID: msg.Template,
			Status:     export.JobPending,
			CreatedAt:  msg.Timestamp,
		}
		if err := w.jobs.AddJob(ctx, job); err != nil {
			return fmt.Errorf("register export job: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("look up export job: %w", err)
	}

	if err := w.exports.ProcessJob(ctx, msg.JobID); err != nil {
		return fmt.Errorf("process export job: %w", err)
	}
	return nil
}

// StartupCheck re-runs jobs left pending or processing by a previous worker
// that died mid-flight. Recovers from lost AMQP messages.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	jobs, err := w.jobs.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list jobs for startup check: %w", err)
	}

	stuck := 0
	for _, job := range jobs {
		if job.Status != export.JobPending && job.Status != export.JobProcessing {
			continue
		}
		stuck++
		if err := w.exports.ProcessJob(ctx, job.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to recover stuck job",
				"job_id", job.ID, "error", err)
		}
	}

	if stuck == 0 {
		slog.InfoContext(ctx, "No stuck export jobs found on startup")
	} else {
		slog.InfoContext(ctx, "Recovered stuck export jobs on startup", "count", stuck)
	}
	return nil
}

// RunScheduleSweeper blocks until ctx ends, running due schedules every
// interval.
func (w *ExportWorker) RunScheduleSweeper(ctx context.Context, interval time.Duration) error {
	slog.InfoContext(ctx, "Starting export schedule sweeper", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping export schedule sweeper", "reason", ctx.Err())
			return ctx.Err()
		case now := <-ticker.C:
			if _, err := w.exports.RunDueSchedules(ctx, now); err != nil {
				slog.ErrorContext(ctx, "Schedule sweep failed", "error", err)
			}
		}
	}
}
