// Package store defines the persistence ports the application depends on.
// The aggregation engine never touches storage; handlers and workers load
// expense collections through these interfaces and pass them to core.
package store

import (
	"context"
	"errors"

	"spendtrack/internal/core"
)

// ErrNotFound is returned when an expense id does not exist (or was deleted).
var ErrNotFound = errors.New("expense not found")

// ExpenseStore is the port for expense persistence.
type ExpenseStore interface {
	// Add persists a new expense. The record must already be validated.
	Add(ctx context.Context, e core.Expense) error

	// Get returns the expense with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (core.Expense, error)

	// List returns all stored expenses, newest date first.
	List(ctx context.Context) ([]core.Expense, error)

	// ListByDateRange returns the expenses dated within [start, end];
	// either bound may be empty for an open-ended range.
	ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)

	// Update replaces the stored expense with the same id, or ErrNotFound.
	Update(ctx context.Context, e core.Expense) error

	// Delete removes the expense with the given id, or ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases any underlying resources.
	Close() error
}
