package export

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrJobNotFound      = errors.New("export job not found")
	ErrScheduleNotFound = errors.New("export schedule not found")
	ErrUnknownTemplate  = errors.New("unknown export template")
	ErrInvalidFrequency = errors.New("invalid schedule frequency")
)

// JobStatus tracks an export job through its lifecycle.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is one export request and, once completed, its rendered document.
type Job struct {
	ID          string
	TemplateID  string
	Status      JobStatus
	CreatedAt   time.Time
	CompletedAt time.Time // zero until completed or failed
	RecordCount int
	SizeBytes   int64
	Filename    string
	ContentType string
	Content     []byte
	Error       string
}

// Frequency is how often a schedule fires.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	}
	return false
}

// Next returns the run time following from.
func (f Frequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	}
	return from
}

// Schedule is a recurring export definition swept by the worker.
type Schedule struct {
	ID         string
	Name       string
	TemplateID string
	Frequency  Frequency
	Enabled    bool
	NextRun    time.Time
	LastRun    time.Time // zero until first run
	RunCount   int
	CreatedAt  time.Time
}

// JobStore persists export jobs.
type JobStore interface {
	AddJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	ListJobs(ctx context.Context) ([]Job, error)
	UpdateJob(ctx context.Context, job Job) error
}

// ScheduleStore persists export schedules.
type ScheduleStore interface {
	AddSchedule(ctx context.Context, s Schedule) error
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	UpdateSchedule(ctx context.Context, s Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// MemoryStore is an in-memory JobStore and ScheduleStore.
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      map[string]Job
	schedules map[string]Schedule
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:      make(map[string]Job),
		schedules: make(map[string]Schedule),
	}
}

func (s *MemoryStore) AddJob(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// ListJobs returns jobs newest first.
func (s *MemoryStore) ListJobs(_ context.Context) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) AddSchedule(_ context.Context, sched Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sched.ID] = sched
	return nil
}

func (s *MemoryStore) GetSchedule(_ context.Context, id string) (Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	if !ok {
		return Schedule{}, ErrScheduleNotFound
	}
	return sched, nil
}

// ListSchedules returns schedules ordered by next run, soonest first.
func (s *MemoryStore) ListSchedules(_ context.Context) ([]Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, sched)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextRun.Equal(out[j].NextRun) {
			return out[i].NextRun.Before(out[j].NextRun)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateSchedule(_ context.Context, sched Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[sched.ID]; !ok {
		return ErrScheduleNotFound
	}
	s.schedules[sched.ID] = sched
	return nil
}

func (s *MemoryStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return ErrScheduleNotFound
	}
	delete(s.schedules, id)
	return nil
}
