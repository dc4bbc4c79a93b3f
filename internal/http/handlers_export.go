package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"spendtrack/internal/export"
)

type exportJobResponse struct {
	ID          string `json:"id"`
	Template    string `json:"template"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt,omitempty"`
	RecordCount int    `json:"recordCount"`
	SizeBytes   int64  `json:"sizeBytes"`
	Filename    string `json:"filename,omitempty"`
	Error       string `json:"error,omitempty"`
}

func toExportJobResponse(job export.Job) exportJobResponse {
	resp := exportJobResponse{
		ID:          job.ID,
		Template:    job.TemplateID,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
		RecordCount: job.RecordCount,
		SizeBytes:   job.SizeBytes,
		Filename:    job.Filename,
		Error:       job.Error,
	}
	if !job.CompletedAt.IsZero() {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

type scheduleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Template  string `json:"template"`
	Frequency string `json:"frequency"`
	Enabled   bool   `json:"enabled"`
	NextRun   string `json:"nextRun"`
	LastRun   string `json:"lastRun,omitempty"`
	RunCount  int    `json:"runCount"`
}

func toScheduleResponse(s export.Schedule) scheduleResponse {
	resp := scheduleResponse{
		ID:        s.ID,
		Name:      s.Name,
		Template:  s.TemplateID,
		Frequency: string(s.Frequency),
		Enabled:   s.Enabled,
		NextRun:   s.NextRun.Format(time.RFC3339),
		RunCount:  s.RunCount,
	}
	if !s.LastRun.IsZero() {
		resp.LastRun = s.LastRun.Format(time.RFC3339)
	}
	return resp
}

// handleExportCSV streams a synchronous CSV of all expenses, bypassing the
// job queue. Date-range filtering matches the expense list endpoint.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	startDate, err := queryDate(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := queryDate(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.ListExpensesInRange(ctx, startDate, endDate)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for CSV export", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export expenses")
		return
	}

	tmpl, _ := export.TemplateByID("raw-data")
	doc, err := export.Render(tmpl, expenses, time.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to render CSV export", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render export")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	_, _ = w.Write(doc.Content)
}

func (s *Server) handleExportTemplates(w http.ResponseWriter, _ *http.Request) {
	type templateResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Format      string `json:"format"`
	}
	templates := export.Templates()
	out := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Category:    t.Category,
			Format:      string(t.Format),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExportJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Template string `json:"template"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.exports.CreateJob(ctx, sanitizeInput(req.Template))
	if err != nil {
		if errors.Is(err, export.ErrUnknownTemplate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(ctx, "Failed to create export job", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create export job")
		return
	}
	writeJSON(w, http.StatusAccepted, toExportJobResponse(job))
}

func (s *Server) handleListExportJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.exports.ListJobs(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list export jobs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list export jobs")
		return
	}
	out := make([]exportJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toExportJobResponse(job))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExportJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.exports.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, export.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "export job not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to get export job", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load export job")
		return
	}
	writeJSON(w, http.StatusOK, toExportJobResponse(job))
}

func (s *Server) handleDownloadExportJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.exports.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, export.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "export job not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to get export job for download", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load export job")
		return
	}
	if job.Status != export.JobCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s, not completed", job.Status))
		return
	}

	w.Header().Set("Content-Type", job.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.Filename))
	_, _ = w.Write(job.Content)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name      string `json:"name"`
		Template  string `json:"template"`
		Frequency string `json:"frequency"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sched, err := s.exports.CreateSchedule(ctx, sanitizeInput(req.Name), sanitizeInput(req.Template), export.Frequency(req.Frequency))
	if err != nil {
		if errors.Is(err, export.ErrUnknownTemplate) || errors.Is(err, export.ErrInvalidFrequency) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(ctx, "Failed to create export schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create schedule")
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleResponse(sched))
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	scheds, err := s.exports.ListSchedules(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list export schedules", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list schedules")
		return
	}
	out := make([]scheduleResponse, 0, len(scheds))
	for _, sched := range scheds {
		out = append(out, toScheduleResponse(sched))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled field is required")
		return
	}

	sched, err := s.exports.SetScheduleEnabled(ctx, r.PathValue("id"), *req.Enabled)
	if err != nil {
		if errors.Is(err, export.ErrScheduleNotFound) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		s.logger.ErrorContext(ctx, "Failed to update export schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update schedule")
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(sched))
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.exports.DeleteSchedule(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, export.ErrScheduleNotFound) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to delete export schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
