package http

import (
	"fmt"
	"net/http"
	"time"

	"spendtrack/internal/core"
)

type categoryResponse struct {
	Category             string  `json:"category"`
	TotalAmount          string  `json:"totalAmount"`
	TotalAmountCents     int64   `json:"totalAmountCents"`
	ExpenseCount         int     `json:"expenseCount"`
	Percentage           float64 `json:"percentage"`
	AverageExpenseAmount float64 `json:"averageExpenseAmountCents"`
}

func toCategoryResponses(categories core.RankedCategories) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{
			Category:             string(c.Category),
			TotalAmount:          c.TotalAmount.Decimal(),
			TotalAmountCents:     c.TotalAmount.Cents,
			ExpenseCount:         c.ExpenseCount,
			Percentage:           c.Percentage,
			AverageExpenseAmount: c.AverageExpenseAmount,
		})
	}
	return out
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	summary := core.SummarizeExpenses(expenses, time.Now())

	var top *struct {
		Name        string `json:"name"`
		Amount      string `json:"amount"`
		AmountCents int64  `json:"amountCents"`
	}
	if summary.TopCategory != nil {
		top = &struct {
			Name        string `json:"name"`
			Amount      string `json:"amount"`
			AmountCents int64  `json:"amountCents"`
		}{
			Name:        string(summary.TopCategory.Name),
			Amount:      summary.TopCategory.Amount.Decimal(),
			AmountCents: summary.TopCategory.Amount.Cents,
		}
	}

	writeJSON(w, http.StatusOK, struct {
		TotalSpent        string             `json:"totalSpent"`
		TotalSpentCents   int64              `json:"totalSpentCents"`
		MonthlySpent      string             `json:"monthlySpent"`
		MonthlySpentCents int64              `json:"monthlySpentCents"`
		TopCategory       any                `json:"topCategory"`
		CategoryBreakdown []categoryResponse `json:"categoryBreakdown"`
	}{
		TotalSpent:        summary.TotalSpent.Decimal(),
		TotalSpentCents:   summary.TotalSpent.Cents,
		MonthlySpent:      summary.MonthlySpent.Decimal(),
		MonthlySpentCents: summary.MonthlySpent.Cents,
		TopCategory:       top,
		CategoryBreakdown: toCategoryResponses(summary.CategoryBreakdown),
	})
}

// handleTopCategories serves ranked categories for a time range selected by
// the range parameter: all (default), month, 30d, or custom with explicit
// startDate/endDate bounds.
func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for top categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rank categories")
		return
	}

	limit := queryInt(r, "limit", -1)
	now := time.Now()

	var ranked core.RankedCategories
	switch rangeName := r.URL.Query().Get("range"); rangeName {
	case "", "all":
		ranked = core.TopCategories(expenses, limit)
	case "month":
		start, end := core.CurrentMonthRange(now)
		ranked = core.TopCategoriesInRange(expenses, start, end, limit)
	case "30d":
		start, end := core.LastNDaysRange(now, 30)
		ranked = core.TopCategoriesInRange(expenses, start, end, limit)
	case "custom":
		start, err := queryDate(r, "startDate")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		end, err := queryDate(r, "endDate")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ranked = core.TopCategoriesInRange(expenses, start, end, limit)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown range %q", rangeName))
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponses(ranked))
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for category chart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build category chart")
		return
	}

	limit := queryInt(r, "limit", 10)
	slices := core.CategoryChartData(core.GroupByCategory(expenses), limit)
	writeJSON(w, http.StatusOK, toChartResponse(slices))
}

func (s *Server) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for months", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list months")
		return
	}

	type monthResponse struct {
		Year  int    `json:"year"`
		Month int    `json:"month"`
		Key   string `json:"key"` // YYYY-MM
	}
	months := core.AvailableMonths(expenses)
	out := make([]monthResponse, 0, len(months))
	for _, m := range months {
		out = append(out, monthResponse{
			Year:  m.Year,
			Month: m.Month,
			Key:   fmt.Sprintf("%04d-%02d", m.Year, m.Month),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
