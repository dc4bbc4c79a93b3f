package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spendtrack/internal/amqp"
	"spendtrack/internal/export"
	"spendtrack/internal/store"
)

// ExportService manages export jobs and recurring export schedules. When an
// AMQP client is configured jobs are handed to the worker; otherwise they are
// processed inline so the API stays usable without a broker.
type ExportService struct {
	expenses   store.ExpenseStore
	jobs       export.JobStore
	schedules  export.ScheduleStore
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewExportService(expenses store.ExpenseStore, jobs export.JobStore, schedules export.ScheduleStore, amqpClient *amqp.Client) *ExportService {
	return &ExportService{
		expenses:   expenses,
		jobs:       jobs,
		schedules:  schedules,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// CreateJob queues an export for the given template and returns the job in its
// current state. With a broker the returned job is still pending; inline
// processing returns it completed or failed.
func (s *ExportService) CreateJob(ctx context.Context, templateID string) (export.Job, error) {
	tmpl, ok := export.TemplateByID(templateID)
	if !ok {
		return export.Job{}, fmt.Errorf("create job for %q: %w", templateID, export.ErrUnknownTemplate)
	}

	job := export.Job{
		ID:         uuid.NewString(),
		TemplateID: tmpl.ID,
		Status:     export.JobPending,
		CreatedAt:  s.now(),
	}
	if err := s.jobs.AddJob(ctx, job); err != nil {
		return export.Job{}, fmt.Errorf("save job: %w", err)
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishExportJob(ctx, job.ID, job.TemplateID); err == nil {
			slog.InfoContext(ctx, "Export job queued",
				"job_id", job.ID, "template", job.TemplateID)
			return job, nil
		} else {
			// Broker trouble falls back to inline processing.
			slog.WarnContext(ctx, "Failed to publish export job, processing inline",
				"job_id", job.ID, "error", err)
		}
	}

	if err := s.ProcessJob(ctx, job.ID); err != nil {
		return export.Job{}, err
	}
	return s.jobs.GetJob(ctx, job.ID)
}

// ProcessJob renders the job's document and records the outcome. A render
// failure marks the job failed and returns nil so the message is not requeued
// forever.
func (s *ExportService) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status == export.JobCompleted {
		return nil // already done, likely a redelivered message
	}

	job.Status = export.JobProcessing
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}

	doc, renderErr := s.renderJob(ctx, job)
	now := s.now()
	if renderErr != nil {
		job.Status = export.JobFailed
		job.CompletedAt = now
		job.Error = renderErr.Error()
		if err := s.jobs.UpdateJob(ctx, job); err != nil {
			return fmt.Errorf("mark job failed: %w", err)
		}
		slog.ErrorContext(ctx, "Export job failed",
			"job_id", job.ID, "template", job.TemplateID, "error", renderErr)
		return nil
	}

	job.Status = export.JobCompleted
	job.CompletedAt = now
	job.RecordCount = doc.RecordCount
	job.SizeBytes = int64(len(doc.Content))
	job.Filename = doc.Filename
	job.ContentType = doc.ContentType
	job.Content = doc.Content
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}

	slog.InfoContext(ctx, "Export job completed",
		"job_id", job.ID,
		"template", job.TemplateID,
		"record_count", job.RecordCount,
		"size_bytes", job.SizeBytes)
	return nil
}

func (s *ExportService) renderJob(ctx context.Context, job export.Job) (export.Document, error) {
	tmpl, ok := export.TemplateByID(job.TemplateID)
	if !ok {
		return export.Document{}, export.ErrUnknownTemplate
	}
	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return export.Document{}, fmt.Errorf("load expenses: %w", err)
	}
	return export.Render(tmpl, expenses, s.now())
}

func (s *ExportService) GetJob(ctx context.Context, id string) (export.Job, error) {
	return s.jobs.GetJob(ctx, id)
}

func (s *ExportService) ListJobs(ctx context.Context) ([]export.Job, error) {
	return s.jobs.ListJobs(ctx)
}

// CreateSchedule registers a recurring export. The first run lands one
// frequency interval from now.
func (s *ExportService) CreateSchedule(ctx context.Context, name, templateID string, freq export.Frequency) (export.Schedule, error) {
	if _, ok := export.TemplateByID(templateID); !ok {
		return export.Schedule{}, fmt.Errorf("schedule for %q: %w", templateID, export.ErrUnknownTemplate)
	}
	if !freq.Valid() {
		return export.Schedule{}, fmt.Errorf("schedule frequency %q: %w", freq, export.ErrInvalidFrequency)
	}

	now := s.now()
	sched := export.Schedule{
		ID:         uuid.NewString(),
		Name:       name,
		TemplateID: templateID,
		Frequency:  freq,
		Enabled:    true,
		NextRun:    freq.Next(now),
		CreatedAt:  now,
	}
	if err := s.schedules.AddSchedule(ctx, sched); err != nil {
		return export.Schedule{}, fmt.Errorf("save schedule: %w", err)
	}

	slog.InfoContext(ctx, "Export schedule created",
		"schedule_id", sched.ID,
		"schedule_name", sched.Name,
		"template", sched.TemplateID,
		"next_run", sched.NextRun)
	return sched, nil
}

func (s *ExportService) ListSchedules(ctx context.Context) ([]export.Schedule, error) {
	return s.schedules.ListSchedules(ctx)
}

// SetScheduleEnabled toggles a schedule without touching its cadence.
func (s *ExportService) SetScheduleEnabled(ctx context.Context, id string, enabled bool) (export.Schedule, error) {
	sched, err := s.schedules.GetSchedule(ctx, id)
	if err != nil {
		return export.Schedule{}, err
	}
	sched.Enabled = enabled
	if err := s.schedules.UpdateSchedule(ctx, sched); err != nil {
		return export.Schedule{}, err
	}
	return sched, nil
}

func (s *ExportService) DeleteSchedule(ctx context.Context, id string) error {
	return s.schedules.DeleteSchedule(ctx, id)
}

// RunDueSchedules processes every enabled schedule whose NextRun is at or
// before now, advancing its cadence even when the run fails so a broken
// template cannot wedge the sweeper. Returns the number of schedules run.
func (s *ExportService) RunDueSchedules(ctx context.Context, now time.Time) (int, error) {
	scheds, err := s.schedules.ListSchedules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list schedules: %w", err)
	}

	ran := 0
	for _, sched := range scheds {
		if !sched.Enabled || sched.NextRun.After(now) {
			continue
		}

		job := export.Job{
			ID:         uuid.NewString(),
			TemplateID: sched.TemplateID,
			Status:     export.JobPending,
			CreatedAt:  now,
		}
		if err := s.jobs.AddJob(ctx, job); err != nil {
			slog.ErrorContext(ctx, "Failed to save scheduled job",
				"schedule_id", sched.ID, "error", err)
			continue
		}
		if err := s.ProcessJob(ctx, job.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to process scheduled job",
				"schedule_id", sched.ID, "job_id", job.ID, "error", err)
		}

		sched.LastRun = now
		sched.RunCount++
		sched.NextRun = sched.Frequency.Next(now)
		if err := s.schedules.UpdateSchedule(ctx, sched); err != nil {
			if errors.Is(err, export.ErrScheduleNotFound) {
				continue // deleted mid-sweep
			}
			slog.ErrorContext(ctx, "Failed to advance schedule",
				"schedule_id", sched.ID, "error", err)
			continue
		}
		ran++
	}

	if ran > 0 {
		slog.InfoContext(ctx, "Processed due export schedules", "ran", ran)
	}
	return ran, nil
}

// Close releases the AMQP connection when one is configured.
func (s *ExportService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
