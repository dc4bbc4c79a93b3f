package core

// ChartSlice is one chart-ready bucket: a vendor (or category) with its
// share of the full population's spend and a deterministic color.
type ChartSlice struct {
	Name       string
	Amount     Money
	Percentage float64
	Color      string
}

// chartPalette is the fixed slice color rotation. Colors repeat with modulo
// arithmetic when a chart shows more slices than the palette holds.
var chartPalette = []string{
	"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6",
	"#06B6D4", "#F97316", "#84CC16", "#EC4899", "#6366F1",
}

// VendorChartData maps the top limit vendors into chart slices. Percentages
// are computed against the spend of ALL input vendors, not just the
// displayed subset, so a truncated chart still reports population shares.
// A negative limit means no truncation.
func VendorChartData(vendors RankedVendors, limit int) []ChartSlice {
	var total int64
	for _, v := range vendors {
		total += v.TotalSpent.Cents
	}

	top := vendors
	if limit >= 0 && len(top) > limit {
		top = top[:limit]
	}

	slices := make([]ChartSlice, 0, len(top))
	for i, v := range top {
		pct := 0.0
		if total > 0 {
			pct = float64(v.TotalSpent.Cents) / float64(total) * 100
		}
		slices = append(slices, ChartSlice{
			Name:       v.Name,
			Amount:     v.TotalSpent,
			Percentage: pct,
			Color:      chartPalette[i%len(chartPalette)],
		})
	}
	return slices
}

// CategoryChartData is the category analogue of VendorChartData.
func CategoryChartData(categories RankedCategories, limit int) []ChartSlice {
	var total int64
	for _, c := range categories {
		total += c.TotalAmount.Cents
	}

	top := categories
	if limit >= 0 && len(top) > limit {
		top = top[:limit]
	}

	slices := make([]ChartSlice, 0, len(top))
	for i, c := range top {
		pct := 0.0
		if total > 0 {
			pct = float64(c.TotalAmount.Cents) / float64(total) * 100
		}
		slices = append(slices, ChartSlice{
			Name:       string(c.Category),
			Amount:     c.TotalAmount,
			Percentage: pct,
			Color:      chartPalette[i%len(chartPalette)],
		})
	}
	return slices
}
