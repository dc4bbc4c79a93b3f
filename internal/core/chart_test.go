package core

import (
	"fmt"
	"math"
	"testing"
)

func TestVendorChartDataTruncationAndShares(t *testing.T) {
	// 15 vendors totalling 1000.00; the top vendor holds 100.00.
	vendors := make(RankedVendors, 15)
	vendors[0] = Vendor{Name: "top", TotalSpent: Money{Cents: 10000}}
	remaining := int64(100000 - 10000)
	for i := 1; i < 15; i++ {
		share := remaining / 14
		if i == 14 {
			share = remaining - 13*(remaining/14)
		}
		vendors[i] = Vendor{Name: fmt.Sprintf("v%02d", i), TotalSpent: Money{Cents: share}}
	}

	slices := VendorChartData(vendors, 10)
	if len(slices) != 10 {
		t.Fatalf("expected 10 slices, got %d", len(slices))
	}
	// Share is computed against all 15 vendors, not the displayed 10.
	if math.Abs(slices[0].Percentage-10.0) > 1e-9 {
		t.Fatalf("top percentage = %v, want 10.0", slices[0].Percentage)
	}
}

func TestVendorChartDataColorsCycle(t *testing.T) {
	vendors := make(RankedVendors, 12)
	for i := range vendors {
		vendors[i] = Vendor{Name: fmt.Sprintf("v%02d", i), TotalSpent: Money{Cents: 100}}
	}

	slices := VendorChartData(vendors, 12)
	if len(slices) != 12 {
		t.Fatalf("expected 12 slices, got %d", len(slices))
	}
	if slices[10].Color != slices[0].Color || slices[11].Color != slices[1].Color {
		t.Fatalf("palette should cycle: %q/%q vs %q/%q",
			slices[10].Color, slices[11].Color, slices[0].Color, slices[1].Color)
	}
	if slices[0].Color == slices[1].Color {
		t.Fatalf("adjacent slices share a color: %q", slices[0].Color)
	}
}

func TestVendorChartDataZeroTotal(t *testing.T) {
	vendors := RankedVendors{{Name: "free", TotalSpent: Money{Cents: 0}}}
	slices := VendorChartData(vendors, 10)
	if len(slices) != 1 || slices[0].Percentage != 0 {
		t.Fatalf("zero-total slice should carry 0%%, got %+v", slices)
	}
}

func TestVendorChartDataEmpty(t *testing.T) {
	if got := VendorChartData(nil, 10); len(got) != 0 {
		t.Fatalf("expected no slices, got %+v", got)
	}
}

func TestCategoryChartData(t *testing.T) {
	categories := RankedCategories{
		{Category: Food, TotalAmount: Money{Cents: 7500}},
		{Category: Bills, TotalAmount: Money{Cents: 2500}},
	}
	slices := CategoryChartData(categories, 10)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Name != "Food" || math.Abs(slices[0].Percentage-75) > 1e-9 {
		t.Fatalf("unexpected first slice: %+v", slices[0])
	}
}
