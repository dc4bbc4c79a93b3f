package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestExportCSVEndpoint(t *testing.T) {
	s := newTestServer(t)
	createExpense(t, s, "25.50", "Lunch at McDonald's", "Food", "2024-03-05", "")
	createExpense(t, s, "45.00", "Gas from Shell", "Transportation", "2024-02-20", "")

	rec := doRequest(t, s, http.MethodGet, "/api/export/csv?startDate=2024-03-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "McDonald's") {
		t.Error("March expense missing from export")
	}
	if strings.Contains(body, "Shell") {
		t.Error("February expense leaked past startDate filter")
	}
}

func TestExportTemplatesEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/export/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var templates []struct {
		ID     string `json:"id"`
		Format string `json:"format"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &templates); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(templates) == 0 {
		t.Fatal("empty template list")
	}
}

func TestExportJobLifecycle(t *testing.T) {
	s := newTestServer(t)
	createExpense(t, s, "25.50", "Lunch at McDonald's", "Food", "2024-03-05", "")

	rec := doRequest(t, s, http.MethodPost, "/api/export/jobs", map[string]string{"template": "raw-data"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create job status = %d, body %s", rec.Code, rec.Body.String())
	}
	var job exportJobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// No broker in tests, so the job is processed inline.
	if job.Status != "completed" || job.RecordCount != 1 {
		t.Fatalf("job = %+v", job)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/export/jobs/"+job.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get job status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/export/jobs/"+job.ID+"/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "McDonald's") {
		t.Error("downloaded document missing expense data")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/export/jobs/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/export/jobs", map[string]string{"template": "nope"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown template status = %d, want 422", rec.Code)
	}
}

func TestScheduleEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/export/schedules", map[string]string{
		"name": "weekly backup", "template": "raw-data", "frequency": "weekly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create schedule status = %d, body %s", rec.Code, rec.Body.String())
	}
	var sched scheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sched.Enabled || sched.NextRun == "" {
		t.Errorf("schedule = %+v", sched)
	}

	rec = doRequest(t, s, http.MethodPatch, "/api/export/schedules/"+sched.ID, map[string]bool{"enabled": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d", rec.Code)
	}
	var patched scheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &patched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if patched.Enabled {
		t.Error("schedule still enabled after patch")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/export/schedules", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/export/schedules/"+sched.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodDelete, "/api/export/schedules/"+sched.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/export/schedules", map[string]string{
		"name": "bad", "template": "raw-data", "frequency": "hourly",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad frequency status = %d, want 422", rec.Code)
	}
}
