package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"spendtrack/internal/core"
)

// Document is the rendered output of an export job.
type Document struct {
	Content     []byte
	ContentType string
	Filename    string
	RecordCount int
}

// Render runs the template's dataset pipeline over expenses and encodes the
// result. now anchors month-scoped templates and filenames.
func Render(t Template, expenses []core.Expense, now time.Time) (Document, error) {
	scoped := expenses
	if t.MonthScoped {
		start, end := core.CurrentMonthRange(now)
		scoped = core.FilterByDateRange(expenses, start, end)
	}

	var (
		content []byte
		records int
		err     error
	)
	switch t.Dataset {
	case DatasetExpenses:
		records = len(scoped)
		content, err = encodeExpenses(scoped, t.Format)
	case DatasetVendors:
		vendors := core.GroupByVendor(scoped)
		records = len(vendors)
		content, err = encodeVendors(vendors, t.Format)
	case DatasetCategories:
		categories := core.GroupByCategory(scoped)
		records = len(categories)
		content, err = encodeCategories(categories, t.Format)
	default:
		return Document{}, fmt.Errorf("unknown dataset %q", t.Dataset)
	}
	if err != nil {
		return Document{}, fmt.Errorf("render %s: %w", t.ID, err)
	}

	return Document{
		Content:     content,
		ContentType: contentType(t.Format),
		Filename:    fmt.Sprintf("%s-%s.%s", t.ID, now.Format("2006-01-02"), t.Format),
		RecordCount: records,
	}, nil
}

func contentType(f Format) string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

func encodeExpenses(expenses []core.Expense, f Format) ([]byte, error) {
	if f == FormatJSON {
		type row struct {
			ID          string `json:"id"`
			Date        string `json:"date"`
			Description string `json:"description"`
			Category    string `json:"category"`
			Amount      string `json:"amount"`
			Vendor      string `json:"vendor,omitempty"`
		}
		rows := make([]row, 0, len(expenses))
		for _, e := range expenses {
			rows = append(rows, row{
				ID:          e.ID,
				Date:        e.Date.ISO(),
				Description: e.Description,
				Category:    string(e.Category),
				Amount:      e.Amount.Decimal(),
				Vendor:      e.Vendor,
			})
		}
		return marshalJSON(rows)
	}
	return writeCSV(
		[]string{"Date", "Description", "Category", "Amount", "Vendor"},
		len(expenses),
		func(i int) []string {
			e := expenses[i]
			return []string{e.Date.ISO(), e.Description, string(e.Category), e.Amount.Decimal(), core.VendorName(e)}
		},
	)
}

func encodeVendors(vendors core.RankedVendors, f Format) ([]byte, error) {
	if f == FormatJSON {
		type row struct {
			Name               string   `json:"name"`
			TotalSpent         string   `json:"totalSpent"`
			TransactionCount   int      `json:"transactionCount"`
			AverageTransaction string   `json:"averageTransaction"`
			Categories         []string `json:"categories"`
			FirstTransaction   string   `json:"firstTransaction"`
			LastTransaction    string   `json:"lastTransaction"`
		}
		rows := make([]row, 0, len(vendors))
		for _, v := range vendors {
			rows = append(rows, row{
				Name:               v.Name,
				TotalSpent:         v.TotalSpent.Decimal(),
				TransactionCount:   v.TransactionCount,
				AverageTransaction: core.Money{Cents: int64(v.AverageTransaction)}.Decimal(),
				Categories:         categoryNames(v.Categories),
				FirstTransaction:   v.FirstTransaction.ISO(),
				LastTransaction:    v.LastTransaction.ISO(),
			})
		}
		return marshalJSON(rows)
	}
	return writeCSV(
		[]string{"Vendor", "Total Spent", "Transactions", "Average", "Categories", "First Transaction", "Last Transaction"},
		len(vendors),
		func(i int) []string {
			v := vendors[i]
			return []string{
				v.Name,
				v.TotalSpent.Decimal(),
				fmt.Sprintf("%d", v.TransactionCount),
				core.Money{Cents: int64(v.AverageTransaction)}.Decimal(),
				strings.Join(categoryNames(v.Categories), "; "),
				v.FirstTransaction.ISO(),
				v.LastTransaction.ISO(),
			}
		},
	)
}

func encodeCategories(categories core.RankedCategories, f Format) ([]byte, error) {
	if f == FormatJSON {
		type row struct {
			Category     string  `json:"category"`
			TotalAmount  string  `json:"totalAmount"`
			ExpenseCount int     `json:"expenseCount"`
			Percentage   float64 `json:"percentage"`
			Average      string  `json:"averageExpenseAmount"`
		}
		rows := make([]row, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, row{
				Category:     string(c.Category),
				TotalAmount:  c.TotalAmount.Decimal(),
				ExpenseCount: c.ExpenseCount,
				Percentage:   c.Percentage,
				Average:      core.Money{Cents: int64(c.AverageExpenseAmount)}.Decimal(),
			})
		}
		return marshalJSON(rows)
	}
	return writeCSV(
		[]string{"Category", "Total", "Expenses", "Share", "Average"},
		len(categories),
		func(i int) []string {
			c := categories[i]
			return []string{
				string(c.Category),
				c.TotalAmount.Decimal(),
				fmt.Sprintf("%d", c.ExpenseCount),
				fmt.Sprintf("%.1f%%", c.Percentage),
				core.Money{Cents: int64(c.AverageExpenseAmount)}.Decimal(),
			}
		},
	)
}

func categoryNames(cats []core.Category) []string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return names
}

func writeCSV(header []string, n int, row func(int) []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
