package http

import (
	"encoding/json"
	"net/http"
	"testing"
)

func seedVendorData(t *testing.T, s *Server) {
	t.Helper()
	createExpense(t, s, "25.50", "Lunch at McDonald's", "Food", "2024-03-05", "")
	createExpense(t, s, "30.25", "Dinner at McDonald's", "Food", "2024-03-12", "")
	createExpense(t, s, "100.00", "Amazon", "Shopping", "2024-03-10", "")
	createExpense(t, s, "45.00", "Gas from Shell", "Transportation", "2024-02-20", "")
}

func TestListVendors(t *testing.T) {
	s := newTestServer(t)
	seedVendorData(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/vendors", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var vendors []vendorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &vendors); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(vendors) != 3 {
		t.Fatalf("got %d vendors, want 3", len(vendors))
	}
	// Descending by total spent.
	if vendors[0].Name != "Amazon" || vendors[1].Name != "McDonald's" || vendors[2].Name != "Shell" {
		t.Errorf("order = %s, %s, %s", vendors[0].Name, vendors[1].Name, vendors[2].Name)
	}
	if vendors[1].TotalSpentCents != 5575 || vendors[1].TransactionCount != 2 {
		t.Errorf("merged vendor = %+v", vendors[1])
	}
}

func TestListVendorsFiltered(t *testing.T) {
	s := newTestServer(t)
	seedVendorData(t, s)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"by category", "/api/vendors?category=Food", []string{"McDonald's"}},
		{"min spent", "/api/vendors?minSpent=50.00", []string{"Amazon", "McDonald's"}},
		{"search", "/api/vendors?q=shell", []string{"Shell"}},
		// Overlap semantics: Shell's only transaction is in February but its
		// activity window overlaps a range starting mid-February.
		{"date overlap", "/api/vendors?startDate=2024-02-15&endDate=2024-02-25", []string{"Shell"}},
		{"combined", "/api/vendors?category=Food&minSpent=100.00", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var vendors []vendorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &vendors); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(vendors) != len(tt.want) {
				t.Fatalf("got %d vendors, want %d", len(vendors), len(tt.want))
			}
			for i, name := range tt.want {
				if vendors[i].Name != name {
					t.Errorf("vendors[%d] = %q, want %q", i, vendors[i].Name, name)
				}
			}
		})
	}
}

func TestVendorSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedVendorData(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/vendors/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary struct {
		TopVendors      []vendorResponse `json:"topVendors"`
		TotalVendors    int              `json:"totalVendors"`
		TotalSpentCents int64            `json:"totalSpentCents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.TotalVendors != 3 {
		t.Errorf("TotalVendors = %d", summary.TotalVendors)
	}
	if summary.TotalSpentCents != 20075 {
		t.Errorf("TotalSpentCents = %d, want 20075", summary.TotalSpentCents)
	}
	if len(summary.TopVendors) != 3 || summary.TopVendors[0].Name != "Amazon" {
		t.Errorf("TopVendors = %+v", summary.TopVendors)
	}
}

func TestVendorChartEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedVendorData(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/vendors/chart?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var slices []chartSliceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &slices); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(slices) != 2 {
		t.Fatalf("got %d slices, want 2", len(slices))
	}
	// Percentages are relative to all vendors, not just the charted ones.
	wantPct := float64(10000) / float64(20075) * 100
	if diff := slices[0].Percentage - wantPct; diff > 0.01 || diff < -0.01 {
		t.Errorf("top slice percentage = %v, want ~%v", slices[0].Percentage, wantPct)
	}
	if slices[0].Color == "" || slices[1].Color == "" {
		t.Error("chart slices missing colors")
	}
}

func TestVendorTrendsEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedVendorData(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/vendors/McDonald's/trends", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var trend struct {
		Vendor  string `json:"vendor"`
		Monthly []struct {
			Month       string `json:"month"`
			AmountCents int64  `json:"amountCents"`
		} `json:"monthly"`
		TotalCents int64 `json:"totalCents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trend); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if trend.TotalCents != 5575 {
		t.Errorf("TotalCents = %d, want 5575", trend.TotalCents)
	}
	if len(trend.Monthly) != 1 || trend.Monthly[0].Month != "2024-03" {
		t.Errorf("Monthly = %+v", trend.Monthly)
	}
}

func TestSummaryAndCategories(t *testing.T) {
	s := newTestServer(t)
	seedVendorData(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary struct {
		TotalSpentCents int64 `json:"totalSpentCents"`
		TopCategory     *struct {
			Name string `json:"name"`
		} `json:"topCategory"`
		CategoryBreakdown []categoryResponse `json:"categoryBreakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.TotalSpentCents != 20075 {
		t.Errorf("TotalSpentCents = %d", summary.TotalSpentCents)
	}
	if summary.TopCategory == nil || summary.TopCategory.Name != "Shopping" {
		t.Errorf("TopCategory = %+v", summary.TopCategory)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/categories/top?range=custom&startDate=2024-03-01&endDate=2024-03-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("top categories status = %d", rec.Code)
	}
	var cats []categoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories in March, want 2", len(cats))
	}
	// Shares are relative to the ranged subset.
	if cats[0].Category != "Shopping" || cats[0].Percentage < 64 || cats[0].Percentage > 65 {
		t.Errorf("top category = %+v", cats[0])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/categories/top?range=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus range status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/months", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("months status = %d", rec.Code)
	}
	var months []struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &months); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(months) != 2 || months[0].Key != "2024-03" || months[1].Key != "2024-02" {
		t.Errorf("months = %+v", months)
	}
}
