package core

import (
	"sort"
	"time"
)

// CategorySummary is the aggregate view of one category within the expense
// population it was computed from. Percentage is relative to that population
// only; a subset passed in yields subset-relative shares.
type CategorySummary struct {
	Category             Category
	TotalAmount          Money
	ExpenseCount         int
	Percentage           float64
	AverageExpenseAmount float64 // cents
}

// RankedCategories is ordered by descending TotalAmount.
type RankedCategories []CategorySummary

// TopCategoryAmount names the highest-spend category for headline display.
type TopCategoryAmount struct {
	Name   Category
	Amount Money
}

// ExpenseSummary gives the dashboard-level reduction of an expense
// collection: all-time spend, spend in the month containing now, the top
// category and the full category breakdown.
type ExpenseSummary struct {
	TotalSpent        Money
	MonthlySpent      Money
	TopCategory       *TopCategoryAmount // nil when there are no expenses
	CategoryBreakdown RankedCategories
}

// GroupByCategory aggregates expenses by their category. Each group's
// percentage is its share of the call-scoped total, 0 when the total is 0
// (never NaN). Output is ordered by descending TotalAmount, ties broken by
// category name ascending.
func GroupByCategory(expenses []Expense) RankedCategories {
	totals := make(map[Category]int64)
	counts := make(map[Category]int)
	var overall int64

	for _, e := range expenses {
		totals[e.Category] += e.Amount.Cents
		counts[e.Category]++
		overall += e.Amount.Cents
	}

	summaries := make(RankedCategories, 0, len(totals))
	for cat, cents := range totals {
		count := counts[cat]
		pct := 0.0
		if overall > 0 {
			pct = float64(cents) / float64(overall) * 100
		}
		summaries = append(summaries, CategorySummary{
			Category:             cat,
			TotalAmount:          Money{Cents: cents},
			ExpenseCount:         count,
			Percentage:           pct,
			AverageExpenseAmount: float64(cents) / float64(count),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalAmount.Cents != summaries[j].TotalAmount.Cents {
			return summaries[i].TotalAmount.Cents > summaries[j].TotalAmount.Cents
		}
		return summaries[i].Category < summaries[j].Category
	})

	return summaries
}

// TopCategories returns at most limit category summaries, highest spend
// first. Percentages remain relative to the full input population.
func TopCategories(expenses []Expense, limit int) RankedCategories {
	ranked := GroupByCategory(expenses)
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopCategoriesInRange scopes the category ranking to expenses dated within
// [start, end]; either bound may be empty for an open-ended range.
// Percentages are computed against the scoped population.
func TopCategoriesInRange(expenses []Expense, start, end Date, limit int) RankedCategories {
	if !start.IsEmpty() || !end.IsEmpty() {
		expenses = FilterByDateRange(expenses, start, end)
	}
	return TopCategories(expenses, limit)
}

// SummarizeExpenses computes the dashboard summary. The reference time now is
// injected so "this month" is testable without a system clock.
func SummarizeExpenses(expenses []Expense, now time.Time) ExpenseSummary {
	var total int64
	for _, e := range expenses {
		total += e.Amount.Cents
	}

	breakdown := GroupByCategory(expenses)

	var top *TopCategoryAmount
	if len(breakdown) > 0 {
		top = &TopCategoryAmount{
			Name:   breakdown[0].Category,
			Amount: breakdown[0].TotalAmount,
		}
	}

	return ExpenseSummary{
		TotalSpent:        Money{Cents: total},
		MonthlySpent:      MonthlySpent(expenses, now.Year(), int(now.Month())),
		TopCategory:       top,
		CategoryBreakdown: breakdown,
	}
}

// MonthlySpent sums the expenses dated in the given calendar month.
func MonthlySpent(expenses []Expense, year, month int) Money {
	var total int64
	for _, e := range expenses {
		if e.Date.Year() == year && int(e.Date.Month()) == month {
			total += e.Amount.Cents
		}
	}
	return Money{Cents: total}
}

// MonthKey identifies a calendar month that has at least one expense.
type MonthKey struct {
	Year  int
	Month int // 1-12
}

// AvailableMonths lists the distinct months covered by the expenses, newest
// first.
func AvailableMonths(expenses []Expense) []MonthKey {
	seen := make(map[MonthKey]struct{})
	months := make([]MonthKey, 0)

	for _, e := range expenses {
		key := MonthKey{Year: e.Date.Year(), Month: int(e.Date.Month())}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}

	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})

	return months
}
