// Package memory provides an in-memory ExpenseStore, used as the default
// backend and as a test double. It mirrors the app's original client-side
// storage model: a single flat collection, optionally seeded from a JSON
// file on disk.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

func New() *Store {
	return &Store{}
}

// seedRecord is the on-disk seed format: amounts as decimal strings, dates
// as ISO calendar dates.
type seedRecord struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Vendor      string `json:"vendor,omitempty"`
}

// NewFromFile loads seed expenses from path. A missing or unreadable file
// yields an empty store; malformed records are skipped.
func NewFromFile(path string) *Store {
	s := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var records []seedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return s
	}

	now := time.Now()
	for _, r := range records {
		cents, err := core.ParseDecimalToCents(r.Amount)
		if err != nil {
			continue
		}
		date, err := core.ParseDate(r.Date)
		if err != nil {
			continue
		}
		e := core.Expense{
			ID:          r.ID,
			Amount:      core.Money{Cents: cents},
			Description: r.Description,
			Category:    core.Category(r.Category),
			Date:        date,
			Vendor:      r.Vendor,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if e.Validate() != nil {
			continue
		}
		s.items = append(s.items, e)
	}
	return s
}

func (s *Store) Add(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, store.ErrNotFound
}

func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Expense(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByDateRange(all, start, end), nil
}

func (s *Store) Update(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == e.ID {
			s.items[i] = e
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Close() error {
	return nil
}
