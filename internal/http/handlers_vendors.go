package http

import (
	"net/http"
	"net/url"

	"spendtrack/internal/core"
)

type vendorResponse struct {
	Name               string   `json:"name"`
	TotalSpent         string   `json:"totalSpent"`
	TotalSpentCents    int64    `json:"totalSpentCents"`
	TransactionCount   int      `json:"transactionCount"`
	Categories         []string `json:"categories"`
	AverageTransaction float64  `json:"averageTransactionCents"`
	FirstTransaction   string   `json:"firstTransaction"`
	LastTransaction    string   `json:"lastTransaction"`
}

func toVendorResponse(v core.Vendor) vendorResponse {
	cats := make([]string, 0, len(v.Categories))
	for _, c := range v.Categories {
		cats = append(cats, string(c))
	}
	return vendorResponse{
		Name:               v.Name,
		TotalSpent:         v.TotalSpent.Decimal(),
		TotalSpentCents:    v.TotalSpent.Cents,
		TransactionCount:   v.TransactionCount,
		Categories:         cats,
		AverageTransaction: v.AverageTransaction,
		FirstTransaction:   v.FirstTransaction.ISO(),
		LastTransaction:    v.LastTransaction.ISO(),
	}
}

// vendorFiltersFromQuery builds filters from the request. Supported query
// parameters: category, minSpent, maxSpent, startDate, endDate, q.
func vendorFiltersFromQuery(r *http.Request) (core.VendorFilters, error) {
	var f core.VendorFilters
	f.Category = core.Category(sanitizeInput(r.URL.Query().Get("category")))
	f.SearchQuery = sanitizeInput(r.URL.Query().Get("q"))

	var err error
	if f.MinSpent, err = queryMoney(r, "minSpent"); err != nil {
		return f, err
	}
	if f.MaxSpent, err = queryMoney(r, "maxSpent"); err != nil {
		return f, err
	}
	if f.StartDate, err = queryDate(r, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(r, "endDate"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filters, err := vendorFiltersFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for vendors", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to aggregate vendors")
		return
	}

	vendors := core.FilterVendors(core.GroupByVendor(expenses), filters)
	out := make([]vendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, toVendorResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVendorSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for vendor summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to summarize vendors")
		return
	}

	summary := core.SummarizeVendors(core.GroupByVendor(expenses))
	top := make([]vendorResponse, 0, len(summary.TopVendors))
	for _, v := range summary.TopVendors {
		top = append(top, toVendorResponse(v))
	}

	writeJSON(w, http.StatusOK, struct {
		TopVendors            []vendorResponse `json:"topVendors"`
		TotalVendors          int              `json:"totalVendors"`
		TotalSpent            string           `json:"totalSpent"`
		TotalSpentCents       int64            `json:"totalSpentCents"`
		AverageSpentPerVendor float64          `json:"averageSpentPerVendorCents"`
	}{
		TopVendors:            top,
		TotalVendors:          summary.TotalVendors,
		TotalSpent:            summary.TotalSpent.Decimal(),
		TotalSpentCents:       summary.TotalSpent.Cents,
		AverageSpentPerVendor: summary.AverageSpentPerVendor,
	})
}

type chartSliceResponse struct {
	Name        string  `json:"name"`
	Amount      string  `json:"amount"`
	AmountCents int64   `json:"amountCents"`
	Percentage  float64 `json:"percentage"`
	Color       string  `json:"color"`
}

func toChartResponse(slices []core.ChartSlice) []chartSliceResponse {
	out := make([]chartSliceResponse, 0, len(slices))
	for _, sl := range slices {
		out = append(out, chartSliceResponse{
			Name:        sl.Name,
			Amount:      sl.Amount.Decimal(),
			AmountCents: sl.Amount.Cents,
			Percentage:  sl.Percentage,
			Color:       sl.Color,
		})
	}
	return out
}

func (s *Server) handleVendorChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for vendor chart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build vendor chart")
		return
	}

	limit := queryInt(r, "limit", 10)
	slices := core.VendorChartData(core.GroupByVendor(expenses), limit)
	writeJSON(w, http.StatusOK, toChartResponse(slices))
}

func (s *Server) handleVendorTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, err := url.PathUnescape(r.PathValue("name"))
	if err != nil || name == "" {
		writeError(w, http.StatusBadRequest, "invalid vendor name")
		return
	}

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses for vendor trends", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build vendor trends")
		return
	}

	trend := core.VendorTrends(expenses, name)

	type monthResponse struct {
		Month       string `json:"month"`
		Amount      string `json:"amount"`
		AmountCents int64  `json:"amountCents"`
	}
	monthly := make([]monthResponse, 0, len(trend.Monthly))
	for _, m := range trend.Monthly {
		monthly = append(monthly, monthResponse{
			Month:       m.Month,
			Amount:      m.Amount.Decimal(),
			AmountCents: m.Amount.Cents,
		})
	}

	writeJSON(w, http.StatusOK, struct {
		Vendor     string          `json:"vendor"`
		Monthly    []monthResponse `json:"monthly"`
		Total      string          `json:"total"`
		TotalCents int64           `json:"totalCents"`
	}{
		Vendor:     name,
		Monthly:    monthly,
		Total:      trend.Total.Decimal(),
		TotalCents: trend.Total.Cents,
	})
}
