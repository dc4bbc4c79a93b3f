// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

// ExpenseService orchestrates expense CRUD over the configured store.
type ExpenseService struct {
	store store.ExpenseStore
	now   func() time.Time
}

func NewExpenseService(st store.ExpenseStore) *ExpenseService {
	return &ExpenseService{
		store: st,
		now:   time.Now,
	}
}

// CreateExpense validates and saves an expense, assigning an ID when absent.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := s.now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}
	if err := s.store.Add(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID,
		"amount_cents", e.Amount.Cents,
		"category", string(e.Category))
	return e, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return s.store.Get(ctx, id)
}

// ListExpenses returns all expenses, newest date first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.List(ctx)
}

// ListExpensesInRange returns expenses within the inclusive date range; zero
// bounds are open.
func (s *ExpenseService) ListExpensesInRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	return s.store.ListByDateRange(ctx, start, end)
}

// UpdateExpense validates and persists changes to an existing expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.UpdatedAt = s.now()
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}
	if err := s.store.Update(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	return nil
}

func (s *ExpenseService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
