package core

import (
	"math"
	"reflect"
	"testing"
)

func TestExtractVendorName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Lunch at McDonald's", "McDonald's"},
		{"Gas from Shell", "Shell"},
		{"Walmart - Groceries", "Walmart"},
		{"Amazon", "Amazon"},
		{"Generic grocery store purchase", "Generic grocery store"},
		{"Netflix", "Netflix"},
		{"  Spotify  ", "Spotify"},
		{"Dinner AT Joe's Diner", "Joe's Diner"},
		{"Refund FROM Target", "Target"},
		{"one two three", "one two three"},
		{"", ""},
		// 23 characters but 26 bytes; short-text cutoff counts characters.
		{"Dîner près du café Azur", "Dîner près du café Azur"},
		{" - Groceries without a vendor part", "- Groceries without"},
		{"Quarterly insurance premium paid in advance", "Quarterly insurance premium"},
	}
	for _, tc := range cases {
		if got := ExtractVendorName(tc.in); got != tc.want {
			t.Fatalf("ExtractVendorName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestVendorNamePrecedence(t *testing.T) {
	// An explicit vendor field beats a conflicting description.
	e := Expense{Vendor: "McDonald's", Description: "Lunch at Burger King"}
	if got := VendorName(e); got != "McDonald's" {
		t.Fatalf("VendorName = %q, want McDonald's", got)
	}

	// Whitespace-only vendor counts as absent.
	e = Expense{Vendor: "   ", Description: "Lunch at Burger King"}
	if got := VendorName(e); got != "Burger King" {
		t.Fatalf("VendorName = %q, want Burger King", got)
	}

	// Explicit vendors are trimmed.
	e = Expense{Vendor: "  Acme  ", Description: "whatever"}
	if got := VendorName(e); got != "Acme" {
		t.Fatalf("VendorName = %q, want Acme", got)
	}
}

func TestGroupByVendorMergesResolvedNames(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 2550}, Description: "Lunch at McDonald's", Category: Food, Date: NewDate(2024, 1, 10)},
		{Amount: Money{Cents: 3025}, Vendor: "McDonald's", Description: "irrelevant", Category: Food, Date: NewDate(2024, 2, 5)},
		{Amount: Money{Cents: 10000}, Vendor: "Amazon", Description: "order", Category: Shopping, Date: NewDate(2024, 1, 20)},
	}

	vendors := GroupByVendor(expenses)
	if len(vendors) != 2 {
		t.Fatalf("expected 2 vendors, got %d", len(vendors))
	}

	// Ordered descending by total: Amazon (100.00) before McDonald's (55.75).
	if vendors[0].Name != "Amazon" || vendors[0].TotalSpent.Cents != 10000 || vendors[0].TransactionCount != 1 {
		t.Fatalf("unexpected first vendor: %+v", vendors[0])
	}
	mc := vendors[1]
	if mc.Name != "McDonald's" || mc.TotalSpent.Cents != 5575 || mc.TransactionCount != 2 {
		t.Fatalf("unexpected second vendor: %+v", mc)
	}
	if mc.FirstTransaction.ISO() != "2024-01-10" || mc.LastTransaction.ISO() != "2024-02-05" {
		t.Fatalf("unexpected transaction bounds: %s .. %s", mc.FirstTransaction.ISO(), mc.LastTransaction.ISO())
	}
	if got := mc.AverageTransaction; math.Abs(got-2787.5) > 1e-9 {
		t.Fatalf("AverageTransaction = %v, want 2787.5", got)
	}
}

func TestGroupByVendorDeterministic(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 500}, Vendor: "B", Category: Food, Date: NewDate(2024, 3, 1)},
		{Amount: Money{Cents: 500}, Vendor: "A", Category: Bills, Date: NewDate(2024, 3, 2)},
		{Amount: Money{Cents: 500}, Vendor: "C", Category: Other, Date: NewDate(2024, 3, 3)},
		{Amount: Money{Cents: 900}, Vendor: "D", Category: Food, Date: NewDate(2024, 3, 4)},
	}

	first := GroupByVendor(expenses)
	for i := 0; i < 10; i++ {
		again := GroupByVendor(expenses)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}

	// Equal totals break ties by name ascending.
	wantOrder := []string{"D", "A", "B", "C"}
	for i, v := range first {
		if v.Name != wantOrder[i] {
			t.Fatalf("position %d: got %q, want %q", i, v.Name, wantOrder[i])
		}
	}
}

func TestGroupByVendorSortedDescending(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 100}, Vendor: "small", Category: Food, Date: NewDate(2024, 1, 1)},
		{Amount: Money{Cents: 9000}, Vendor: "big", Category: Food, Date: NewDate(2024, 1, 2)},
		{Amount: Money{Cents: 4500}, Vendor: "mid", Category: Food, Date: NewDate(2024, 1, 3)},
	}
	vendors := GroupByVendor(expenses)
	for i := 1; i < len(vendors); i++ {
		if vendors[i].TotalSpent.Cents > vendors[i-1].TotalSpent.Cents {
			t.Fatalf("not sorted descending at %d: %+v", i, vendors)
		}
	}
}

func TestGroupByVendorEmpty(t *testing.T) {
	if got := GroupByVendor(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestGroupByVendorCategorySet(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 100}, Vendor: "Acme", Category: Food, Date: NewDate(2024, 1, 1)},
		{Amount: Money{Cents: 100}, Vendor: "Acme", Category: Shopping, Date: NewDate(2024, 1, 2)},
		{Amount: Money{Cents: 100}, Vendor: "Acme", Category: Food, Date: NewDate(2024, 1, 3)},
	}
	vendors := GroupByVendor(expenses)
	if len(vendors) != 1 {
		t.Fatalf("expected 1 vendor, got %d", len(vendors))
	}
	want := []Category{Food, Shopping}
	if !reflect.DeepEqual(vendors[0].Categories, want) {
		t.Fatalf("Categories = %v, want %v", vendors[0].Categories, want)
	}
}

func money(cents int64) *Money {
	return &Money{Cents: cents}
}

func TestFilterVendors(t *testing.T) {
	vendors := []Vendor{
		{Name: "Amazon", TotalSpent: Money{Cents: 10000}, Categories: []Category{Shopping},
			FirstTransaction: NewDate(2024, 1, 1), LastTransaction: NewDate(2024, 1, 31)},
		{Name: "McDonald's", TotalSpent: Money{Cents: 5575}, Categories: []Category{Food},
			FirstTransaction: NewDate(2024, 2, 1), LastTransaction: NewDate(2024, 2, 10)},
		{Name: "Shell", TotalSpent: Money{Cents: 2000}, Categories: []Category{Transportation, Other},
			FirstTransaction: NewDate(2023, 12, 1), LastTransaction: NewDate(2024, 3, 1)},
	}

	t.Run("no constraints returns everything", func(t *testing.T) {
		got := FilterVendors(vendors, VendorFilters{})
		if len(got) != 3 {
			t.Fatalf("expected 3 vendors, got %d", len(got))
		}
	})

	t.Run("All sentinel disables category", func(t *testing.T) {
		got := FilterVendors(vendors, VendorFilters{Category: CategoryAll})
		if len(got) != 3 {
			t.Fatalf("expected 3 vendors, got %d", len(got))
		}
	})

	t.Run("category membership", func(t *testing.T) {
		got := FilterVendors(vendors, VendorFilters{Category: Other})
		if len(got) != 1 || got[0].Name != "Shell" {
			t.Fatalf("expected only Shell, got %+v", got)
		}
	})

	t.Run("spending bounds", func(t *testing.T) {
		got := FilterVendors(vendors, VendorFilters{MinSpent: money(3000), MaxSpent: money(8000)})
		if len(got) != 1 || got[0].Name != "McDonald's" {
			t.Fatalf("expected only McDonald's, got %+v", got)
		}
	})

	t.Run("overlap date semantics", func(t *testing.T) {
		// Amazon's history starts before the filter start but its last
		// transaction is inside the window, so it still matches.
		got := FilterVendors(vendors, VendorFilters{StartDate: NewDate(2024, 1, 20)})
		names := vendorNames(got)
		want := []string{"Amazon", "McDonald's", "Shell"}
		if !reflect.DeepEqual(names, want) {
			t.Fatalf("names = %v, want %v", names, want)
		}

		got = FilterVendors(vendors, VendorFilters{EndDate: NewDate(2023, 12, 15)})
		if len(got) != 1 || got[0].Name != "Shell" {
			t.Fatalf("expected only Shell, got %+v", got)
		}
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		got := FilterVendors(vendors, VendorFilters{SearchQuery: "mcdon"})
		if len(got) != 1 || got[0].Name != "McDonald's" {
			t.Fatalf("expected only McDonald's, got %+v", got)
		}
	})

	t.Run("AND composition", func(t *testing.T) {
		combined := FilterVendors(vendors, VendorFilters{Category: Food, MinSpent: money(3000)})

		byCategory := FilterVendors(vendors, VendorFilters{Category: Food})
		intersection := FilterVendors(byCategory, VendorFilters{MinSpent: money(3000)})
		if !reflect.DeepEqual(combined, intersection) {
			t.Fatalf("AND composition broken: %+v vs %+v", combined, intersection)
		}
	})
}

func vendorNames(vendors []Vendor) []string {
	names := make([]string, len(vendors))
	for i, v := range vendors {
		names[i] = v.Name
	}
	return names
}

func TestSummarizeVendors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		sum := SummarizeVendors(nil)
		if sum.TotalVendors != 0 || sum.TotalSpent.Cents != 0 || sum.AverageSpentPerVendor != 0 {
			t.Fatalf("unexpected empty summary: %+v", sum)
		}
	})

	t.Run("truncates top vendors to ten", func(t *testing.T) {
		vendors := make(RankedVendors, 15)
		var total int64
		for i := range vendors {
			cents := int64((15 - i) * 100)
			vendors[i] = Vendor{Name: string(rune('a' + i)), TotalSpent: Money{Cents: cents}}
			total += cents
		}
		sum := SummarizeVendors(vendors)
		if len(sum.TopVendors) != 10 {
			t.Fatalf("TopVendors length = %d, want 10", len(sum.TopVendors))
		}
		if sum.TotalVendors != 15 || sum.TotalSpent.Cents != total {
			t.Fatalf("unexpected summary: %+v", sum)
		}
		wantAvg := float64(total) / 15
		if math.Abs(sum.AverageSpentPerVendor-wantAvg) > 1e-9 {
			t.Fatalf("AverageSpentPerVendor = %v, want %v", sum.AverageSpentPerVendor, wantAvg)
		}
	})
}

func TestVendorTrends(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 1000}, Vendor: "Acme", Category: Food, Date: NewDate(2024, 2, 10)},
		{Amount: Money{Cents: 500}, Vendor: "Acme", Category: Food, Date: NewDate(2024, 1, 5)},
		{Amount: Money{Cents: 250}, Vendor: "Acme", Category: Food, Date: NewDate(2024, 1, 20)},
		{Amount: Money{Cents: 9999}, Vendor: "Someone Else", Category: Food, Date: NewDate(2024, 1, 1)},
	}

	trend := VendorTrends(expenses, "Acme")
	if trend.Total.Cents != 1750 {
		t.Fatalf("Total = %d, want 1750", trend.Total.Cents)
	}
	want := []MonthAmount{
		{Month: "2024-01", Amount: Money{Cents: 750}},
		{Month: "2024-02", Amount: Money{Cents: 1000}},
	}
	if !reflect.DeepEqual(trend.Monthly, want) {
		t.Fatalf("Monthly = %+v, want %+v", trend.Monthly, want)
	}
}
