package http

import (
	"errors"
	"net/http"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

// expenseRequest is the JSON body for creating or updating an expense.
type expenseRequest struct {
	Amount      string `json:"amount"` // decimal string, e.g. "25.50"
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"` // YYYY-MM-DD
	Vendor      string `json:"vendor,omitempty"`
}

type expenseResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amountCents"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Vendor      string `json:"vendor,omitempty"`
	VendorName  string `json:"vendorName"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount.Decimal(),
		AmountCents: e.Amount.Cents,
		Description: e.Description,
		Category:    string(e.Category),
		Date:        e.Date.ISO(),
		Vendor:      e.Vendor,
		VendorName:  core.VendorName(e),
	}
}

func (r expenseRequest) toExpense() (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(r.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Amount:      core.Money{Cents: cents},
		Description: sanitizeInput(r.Description),
		Category:    core.Category(sanitizeInput(r.Category)),
		Date:        date,
		Vendor:      sanitizeInput(r.Vendor),
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
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
		s.logger.ErrorContext(ctx, "Failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	filters := core.ExpenseFilters{
		Category:    core.Category(sanitizeInput(r.URL.Query().Get("category"))),
		SearchQuery: sanitizeInput(r.URL.Query().Get("q")),
	}
	expenses = core.FilterExpenses(expenses, filters)

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, err := req.toExpense()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.expenses.CreateExpense(ctx, exp)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidCategory) || errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(ctx, "Failed to create expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateAggregations()
	s.structured.LogExpenseCreated(ctx, created.ID, created.Amount.Cents, string(created.Category), created.Vendor)
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to get expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	existing, err := s.expenses.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.logger.ErrorContext(ctx, "Failed to load expense for update", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, err := req.toExpense()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	exp.ID = id
	exp.CreatedAt = existing.CreatedAt

	updated, err := s.expenses.UpdateExpense(ctx, exp)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidCategory) || errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(ctx, "Failed to update expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update expense")
		return
	}

	s.invalidateAggregations()
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.logger.ErrorContext(ctx, "Failed to delete expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateAggregations()
	w.WriteHeader(http.StatusNoContent)
}
