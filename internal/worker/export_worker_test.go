package worker

import (
	"context"
	"testing"
	"time"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/export"
	"spendtrack/internal/services"
	"spendtrack/internal/store/memory"
)

func newTestWorker(t *testing.T) (*ExportWorker, *export.MemoryStore, *memory.Store) {
	t.Helper()
	st := memory.New()
	jobs := export.NewMemoryStore()
	exports := services.NewExportService(st, jobs, jobs, nil)
	return NewExportWorker(exports, jobs), jobs, st
}

func addExpense(t *testing.T, st *memory.Store, id, day string) {
	t.Helper()
	d, err := core.ParseDate(day)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	e := core.Expense{ID: id, Amount: core.Money{Cents: 1000}, Description: "Coffee", Category: core.Food, Date: d}
	if err := st.Add(context.Background(), e); err != nil {
		t.Fatalf("add expense: %v", err)
	}
}

func TestHandleJobMessage(t *testing.T) {
	ctx := context.Background()
	w, jobs, st := newTestWorker(t)
	addExpense(t, st, "1", "2024-03-01")

	job := export.Job{ID: "job-1", TemplateID: "raw-data", Status: export.JobPending, CreatedAt: time.Now()}
	if err := jobs.AddJob(ctx, job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	msg := &amqp.ExportJobMessage{JobID: "job-1", Template: "raw-data"}
	if err := w.HandleJobMessage(ctx, msg); err != nil {
		t.Fatalf("HandleJobMessage: %v", err)
	}

	got, err := jobs.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != export.JobCompleted || got.RecordCount != 1 {
		t.Errorf("job after handling = %+v", got)
	}
}

func TestHandleJobMessageRegistersForeignJob(t *testing.T) {
	ctx := context.Background()
	w, jobs, st := newTestWorker(t)
	addExpense(t, st, "1", "2024-03-01")

	// Published by another process; the local store has never seen it.
	msg := &amqp.ExportJobMessage{JobID: "remote-1", Template: "raw-data", Timestamp: time.Now()}
	if err := w.HandleJobMessage(ctx, msg); err != nil {
		t.Fatalf("HandleJobMessage: %v", err)
	}

	got, err := jobs.GetJob(ctx, "remote-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != export.JobCompleted || got.TemplateID != "raw-data" {
		t.Errorf("registered job = %+v", got)
	}
}

func TestStartupCheckRecoversStuckJobs(t *testing.T) {
	ctx := context.Background()
	w, jobs, st := newTestWorker(t)
	addExpense(t, st, "1", "2024-03-01")

	stuck := []export.Job{
		{ID: "pending", TemplateID: "raw-data", Status: export.JobPending, CreatedAt: time.Now()},
		{ID: "processing", TemplateID: "raw-data", Status: export.JobProcessing, CreatedAt: time.Now()},
		{ID: "done", TemplateID: "raw-data", Status: export.JobCompleted, CreatedAt: time.Now(), RecordCount: 99},
	}
	for _, job := range stuck {
		if err := jobs.AddJob(ctx, job); err != nil {
			t.Fatalf("AddJob(%s): %v", job.ID, err)
		}
	}

	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}

	for _, id := range []string{"pending", "processing"} {
		got, err := jobs.GetJob(ctx, id)
		if err != nil {
			t.Fatalf("GetJob(%s): %v", id, err)
		}
		if got.Status != export.JobCompleted {
			t.Errorf("job %s status = %q, want completed", id, got.Status)
		}
	}

	// A finished job must be left untouched.
	done, err := jobs.GetJob(ctx, "done")
	if err != nil {
		t.Fatalf("GetJob(done): %v", err)
	}
	if done.RecordCount != 99 {
		t.Errorf("completed job was reprocessed: %+v", done)
	}
}
