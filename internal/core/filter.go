package core

import (
	"strings"
	"time"
)

// ExpenseFilters narrows a raw expense collection. All fields are optional;
// present constraints combine with AND.
type ExpenseFilters struct {
	Category    Category // empty or CategoryAll disables the constraint
	StartDate   Date
	EndDate     Date
	SearchQuery string // case-insensitive match on description or category
}

// FilterExpenses returns the order-preserving subset of expenses matching
// all present constraints.
func FilterExpenses(expenses []Expense, filters ExpenseFilters) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if !expenseMatches(e, filters) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func expenseMatches(e Expense, f ExpenseFilters) bool {
	if f.Category != "" && f.Category != CategoryAll && e.Category != f.Category {
		return false
	}
	if !f.StartDate.IsEmpty() && !e.Date.OnOrAfter(f.StartDate) {
		return false
	}
	if !f.EndDate.IsEmpty() && !e.Date.OnOrBefore(f.EndDate) {
		return false
	}
	if f.SearchQuery != "" {
		query := strings.ToLower(f.SearchQuery)
		if !strings.Contains(strings.ToLower(e.Description), query) &&
			!strings.Contains(strings.ToLower(string(e.Category)), query) {
			return false
		}
	}
	return true
}

// FilterByDateRange keeps the expenses dated within [start, end]. Either
// bound may be empty for an open-ended range; both empty returns the input
// subset unchanged.
func FilterByDateRange(expenses []Expense, start, end Date) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if !start.IsEmpty() && !e.Date.OnOrAfter(start) {
			continue
		}
		if !end.IsEmpty() && !e.Date.OnOrBefore(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CurrentMonthRange returns the first and last day of the month containing
// now. The reference time is injected for testability.
func CurrentMonthRange(now time.Time) (Date, Date) {
	year, month, _ := now.Date()
	first := NewDate(year, int(month), 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

// LastNDaysRange returns the closed range covering the n days ending at now.
func LastNDaysRange(now time.Time, n int) (Date, Date) {
	end := NewDate(now.Year(), int(now.Month()), now.Day())
	start := Date{Time: end.AddDate(0, 0, -(n - 1))}
	return start, end
}
