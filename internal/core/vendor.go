package core

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Vendor is a derived view over a group of expenses that resolve to the same
// vendor name. It is recomputed on every aggregation call and never stored.
type Vendor struct {
	Name               string
	TotalSpent         Money
	TransactionCount   int
	Categories         []Category // distinct, in order of first occurrence
	AverageTransaction float64    // cents; exact quotient, may be fractional
	FirstTransaction   Date
	LastTransaction    Date
}

// RankedVendors is a vendor slice ordered by descending TotalSpent.
// GroupByVendor is the only producer; consumers that truncate or compute
// top-N shares (SummarizeVendors, VendorChartData) rely on that order.
type RankedVendors []Vendor

// VendorSummary reduces a ranked vendor collection to headline figures.
type VendorSummary struct {
	TopVendors            RankedVendors
	TotalVendors          int
	TotalSpent            Money
	AverageSpentPerVendor float64 // cents
}

// VendorFilters narrows a vendor collection. Zero values mean "no constraint
// from this field"; present constraints combine with AND. Spending bounds are
// pointers so an explicit 0 can be told apart from "unset".
type VendorFilters struct {
	Category    Category // empty or CategoryAll disables the constraint
	MinSpent    *Money
	MaxSpent    *Money
	StartDate   Date
	EndDate     Date
	SearchQuery string
}

const shortDescriptionMax = 25

// ExtractVendorName derives a vendor name from a free-text expense
// description. It is a best-effort heuristic used only when no explicit
// vendor was recorded; it is total (never fails) and deterministic.
func ExtractVendorName(description string) string {
	cleaned := strings.TrimSpace(description)
	lower := strings.ToLower(cleaned)

	// Short text without connective patterns is assumed to already be a
	// vendor name ("Amazon", "Netflix Subscription"). The cutoff counts
	// characters, not bytes, so accented text is measured the same way.
	if utf8.RuneCountInString(cleaned) <= shortDescriptionMax &&
		!strings.Contains(lower, " at ") &&
		!strings.Contains(lower, " from ") &&
		!strings.Contains(cleaned, " - ") {
		return cleaned
	}

	// "Lunch at McDonald's" -> "McDonald's"
	if vendor, ok := afterKeyword(cleaned, lower, " at "); ok {
		return vendor
	}

	// "Gas from Shell" -> "Shell"
	if vendor, ok := afterKeyword(cleaned, lower, " from "); ok {
		return vendor
	}

	// "Walmart - Groceries" -> "Walmart"
	if idx := strings.Index(cleaned, " - "); idx >= 0 {
		if vendor := strings.TrimSpace(cleaned[:idx]); vendor != "" {
			return vendor
		}
	}

	// Generic descriptions: first three words stand in for the vendor.
	words := strings.Fields(cleaned)
	if len(words) <= 3 {
		return cleaned
	}
	return strings.Join(words[:3], " ")
}

// afterKeyword returns the text following the first case-insensitive
// occurrence of keyword, given the pre-lowered copy of s. The portion before
// the keyword must be non-empty.
func afterKeyword(s, lower, keyword string) (string, bool) {
	idx := strings.Index(lower, keyword)
	if idx <= 0 {
		return "", false
	}
	return strings.TrimSpace(s[idx+len(keyword):]), true
}

// VendorName resolves the canonical vendor identity for an expense. An
// explicit vendor field wins over anything the description implies; absent,
// empty and whitespace-only vendors all fall back to extraction.
func VendorName(e Expense) string {
	if v := strings.TrimSpace(e.Vendor); v != "" {
		return v
	}
	return ExtractVendorName(e.Description)
}

type vendorAccumulator struct {
	total      int64
	count      int
	categories []Category
	seen       map[Category]struct{}
	first      Date
	last       Date
}

// GroupByVendor aggregates expenses by resolved vendor name. Records whose
// raw text differs but resolves to the same name merge into one Vendor. The
// result is ordered by descending TotalSpent, ties broken by name ascending
// so repeated calls over the same input are value-identical.
func GroupByVendor(expenses []Expense) RankedVendors {
	groups := make(map[string]*vendorAccumulator)
	order := make([]string, 0, len(expenses))

	for _, e := range expenses {
		name := VendorName(e)
		acc, ok := groups[name]
		if !ok {
			acc = &vendorAccumulator{seen: make(map[Category]struct{})}
			groups[name] = acc
			order = append(order, name)
		}
		acc.total += e.Amount.Cents
		acc.count++
		if _, dup := acc.seen[e.Category]; !dup {
			acc.seen[e.Category] = struct{}{}
			acc.categories = append(acc.categories, e.Category)
		}
		if acc.count == 1 || e.Date.Before(acc.first.Time) {
			acc.first = e.Date
		}
		if acc.count == 1 || e.Date.After(acc.last.Time) {
			acc.last = e.Date
		}
	}

	vendors := make(RankedVendors, 0, len(order))
	for _, name := range order {
		acc := groups[name]
		vendors = append(vendors, Vendor{
			Name:               name,
			TotalSpent:         Money{Cents: acc.total},
			TransactionCount:   acc.count,
			Categories:         acc.categories,
			AverageTransaction: float64(acc.total) / float64(acc.count),
			FirstTransaction:   acc.first,
			LastTransaction:    acc.last,
		})
	}

	sort.SliceStable(vendors, func(i, j int) bool {
		if vendors[i].TotalSpent.Cents != vendors[j].TotalSpent.Cents {
			return vendors[i].TotalSpent.Cents > vendors[j].TotalSpent.Cents
		}
		return vendors[i].Name < vendors[j].Name
	})

	return vendors
}

// FilterVendors returns the order-preserving subset of vendors matching all
// present constraints.
//
// The date bounds use overlap semantics: StartDate requires some activity on
// or after the bound (LastTransaction >= StartDate), EndDate requires some
// activity on or before it (FirstTransaction <= EndDate). A vendor whose
// history merely overlaps the queried window still matches; this is a
// deliberate behavioral contract, not a strict containment filter.
func FilterVendors(vendors []Vendor, filters VendorFilters) []Vendor {
	out := make([]Vendor, 0, len(vendors))
	for _, v := range vendors {
		if !vendorMatches(v, filters) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func vendorMatches(v Vendor, f VendorFilters) bool {
	if f.Category != "" && f.Category != CategoryAll {
		found := false
		for _, c := range v.Categories {
			if c == f.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinSpent != nil && v.TotalSpent.Cents < f.MinSpent.Cents {
		return false
	}
	if f.MaxSpent != nil && v.TotalSpent.Cents > f.MaxSpent.Cents {
		return false
	}
	if !f.StartDate.IsEmpty() && !v.LastTransaction.OnOrAfter(f.StartDate) {
		return false
	}
	if !f.EndDate.IsEmpty() && !v.FirstTransaction.OnOrBefore(f.EndDate) {
		return false
	}
	if f.SearchQuery != "" {
		query := strings.ToLower(f.SearchQuery)
		if !strings.Contains(strings.ToLower(v.Name), query) {
			return false
		}
	}
	return true
}

const topVendorCount = 10

// SummarizeVendors reduces a ranked vendor collection to totals, the average
// spend per vendor (0 on empty input, never NaN) and the top ten vendors.
func SummarizeVendors(vendors RankedVendors) VendorSummary {
	var total int64
	for _, v := range vendors {
		total += v.TotalSpent.Cents
	}

	top := vendors
	if len(top) > topVendorCount {
		top = top[:topVendorCount]
	}

	avg := 0.0
	if len(vendors) > 0 {
		avg = float64(total) / float64(len(vendors))
	}

	return VendorSummary{
		TopVendors:            top,
		TotalVendors:          len(vendors),
		TotalSpent:            Money{Cents: total},
		AverageSpentPerVendor: avg,
	}
}

// MonthAmount is one month's spend for a vendor trend, keyed YYYY-MM.
type MonthAmount struct {
	Month  string
	Amount Money
}

// VendorTrend is the month-by-month spending history for a single vendor.
type VendorTrend struct {
	Monthly []MonthAmount // ascending by month key
	Total   Money
}

// VendorTrends computes the monthly spend series for the expenses resolving
// to vendorName.
func VendorTrends(expenses []Expense, vendorName string) VendorTrend {
	byMonth := make(map[string]int64)
	var total int64

	for _, e := range expenses {
		if VendorName(e) != vendorName {
			continue
		}
		key := e.Date.Format("2006-01")
		byMonth[key] += e.Amount.Cents
		total += e.Amount.Cents
	}

	monthly := make([]MonthAmount, 0, len(byMonth))
	for month, cents := range byMonth {
		monthly = append(monthly, MonthAmount{Month: month, Amount: Money{Cents: cents}})
	}
	sort.Slice(monthly, func(i, j int) bool {
		return monthly[i].Month < monthly[j].Month
	})

	return VendorTrend{Monthly: monthly, Total: Money{Cents: total}}
}
